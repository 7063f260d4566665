package api

import (
	"errors"
	"net/http"

	"github.com/billtubbs/pid-ref/internal/configuration"
	"github.com/billtubbs/pid-ref/internal/control_loop"
	"github.com/labstack/echo/v4"
	"github.com/qdm12/reprint"
)

// GainsUpdate changes the gains of a loop, missing gains are kept
type GainsUpdate struct {
	Kp *float64 `json:"kp,omitempty"`
	Ki *float64 `json:"ki,omitempty"`
	Kd *float64 `json:"kd,omitempty"`
}

func registerLoopEndpoints(rest *echo.Echo) {
	group := rest.Group("/loop")

	group.GET("/", getLoops)
	group.GET("/:"+urlParamId+"/", getLoop)
	group.GET("/:"+urlParamId+"/config/", getLoopConfig)
	group.POST("/:"+urlParamId+"/command/", updateCommand)
	group.POST("/:"+urlParamId+"/gains/", updateGains)
	group.POST("/:"+urlParamId+"/reset/", resetLoop)
}

// returns a snapshot of all currently running loops
func getLoops(c echo.Context) error {
	data := map[string]control_loop.Snapshot{}
	for id, loop := range control_loop.LoopMap.Items() {
		data[id] = loop.Snapshot()
	}
	return c.JSONPretty(http.StatusOK, data, indentationChar)
}

func getLoop(c echo.Context) error {
	id := c.Param(urlParamId)
	loop, exists := control_loop.LoopMap.Get(id)
	if !exists {
		return returnNotFound(c, id)
	}
	return c.JSONPretty(http.StatusOK, loop.Snapshot(), indentationChar)
}

func getLoopConfig(c echo.Context) error {
	id := c.Param(urlParamId)
	config, exists := configuration.FindLoopConfig(id)
	if !exists {
		return returnNotFound(c, id)
	}
	data := reprint.This(*config)
	return c.JSONPretty(http.StatusOK, data, indentationChar)
}

func updateCommand(c echo.Context) error {
	id := c.Param(urlParamId)
	loop, exists := control_loop.LoopMap.Get(id)
	if !exists {
		return returnNotFound(c, id)
	}

	var update control_loop.CommandUpdate
	if err := c.Bind(&update); err != nil {
		return returnBadRequest(c, err)
	}

	command := loop.UpdateCommand(update)
	return c.JSONPretty(http.StatusOK, command, indentationChar)
}

func updateGains(c echo.Context) error {
	id := c.Param(urlParamId)
	loop, exists := control_loop.LoopMap.Get(id)
	if !exists {
		return returnNotFound(c, id)
	}

	var update GainsUpdate
	if err := c.Bind(&update); err != nil {
		return returnBadRequest(c, err)
	}
	if update.Kp == nil && update.Ki == nil && update.Kd == nil {
		return returnBadRequest(c, errors.New("at least one of kp, ki or kd is required"))
	}

	snapshot := loop.Snapshot()
	kp, ki, kd := snapshot.Kp, snapshot.Ki, snapshot.Kd
	if update.Kp != nil {
		kp = *update.Kp
	}
	if update.Ki != nil {
		ki = *update.Ki
	}
	if update.Kd != nil {
		kd = *update.Kd
	}

	if err := loop.Retune(kp, ki, kd); err != nil {
		return returnBadRequest(c, err)
	}
	return c.JSONPretty(http.StatusOK, loop.Snapshot(), indentationChar)
}

func resetLoop(c echo.Context) error {
	id := c.Param(urlParamId)
	loop, exists := control_loop.LoopMap.Get(id)
	if !exists {
		return returnNotFound(c, id)
	}

	if err := loop.Reset(); err != nil {
		return returnError(c, err)
	}
	return c.JSONPretty(http.StatusOK, loop.Snapshot(), indentationChar)
}
