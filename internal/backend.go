package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/billtubbs/pid-ref/internal/actuators"
	"github.com/billtubbs/pid-ref/internal/api"
	"github.com/billtubbs/pid-ref/internal/configuration"
	"github.com/billtubbs/pid-ref/internal/control_loop"
	"github.com/billtubbs/pid-ref/internal/persistence"
	"github.com/billtubbs/pid-ref/internal/sensors"
	"github.com/billtubbs/pid-ref/internal/statistics"
	"github.com/billtubbs/pid-ref/internal/ui"
	"github.com/oklog/run"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const shutdownTimeout = 5 * time.Second

func RunDaemon() {
	pers := persistence.NewPersistence(configuration.CurrentConfig.DbPath)
	if err := pers.Init(); err != nil {
		ui.Fatal("Unable to initialize persistence at %s: %v", configuration.CurrentConfig.DbPath, err)
	}

	loops, err := InitializeObjects(pers)
	if err != nil {
		ui.Fatal("%v", err)
	}
	if len(loops) == 0 {
		ui.Fatal("No valid loop configurations, exiting.")
	}

	statistics.Register(statistics.NewLoopCollector(loops))

	ctx, cancel := context.WithCancel(context.Background())

	var g run.Group
	{
		enabled := configuration.CurrentConfig.Statistics.Enabled
		if enabled {
			// === Prometheus Exporter
			port := configuration.CurrentConfig.Statistics.Port
			if port <= 0 || port >= 65535 {
				port = 9000
			}
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			server := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}

			g.Add(func() error {
				ui.Info("Starting statistics server on %s", server.Addr)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return fmt.Errorf("cannot start prometheus metrics endpoint: %w", err)
				}
				return nil
			}, func(err error) {
				ui.Info("Stopping statistics server...")
				timeoutCtx, timeoutCancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer timeoutCancel()
				if err := server.Shutdown(timeoutCtx); err != nil {
					ui.Warning("Error stopping statistics server: %v", err)
				}
			})
		}
	}
	{
		apiConfig := configuration.CurrentConfig.Api
		if apiConfig.Enabled {
			// === REST API
			rest := api.CreateRestService(prometheus.DefaultRegisterer)
			addr := net.JoinHostPort(apiConfig.Host, strconv.Itoa(apiConfig.Port))

			g.Add(func() error {
				ui.Info("Starting REST API on %s", addr)
				if err := rest.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return fmt.Errorf("cannot start REST API: %w", err)
				}
				return nil
			}, func(err error) {
				ui.Info("Stopping REST API...")
				timeoutCtx, timeoutCancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer timeoutCancel()
				if err := rest.Shutdown(timeoutCtx); err != nil {
					ui.Warning("Error stopping REST API: %v", err)
				}
			})
		}
	}
	{
		// === control loops
		for _, loop := range loops {
			l := loop

			g.Add(func() error {
				err := l.Run(ctx)
				ui.Info("Control loop %s stopped.", l.GetId())
				return err
			}, func(err error) {
				if err != nil {
					ui.Warning("Something went wrong: %v", err)
				}
				cancel()
			})
		}
	}
	{
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		stop := make(chan struct{})

		g.Add(func() error {
			select {
			case <-sig:
				ui.Info("Received SIGTERM signal, exiting...")
			case <-stop:
			}
			return nil
		}, func(err error) {
			signal.Stop(sig)
			close(stop)
			cancel()
		})
	}

	err = g.Run()
	closeDevices()
	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	} else {
		ui.Info("Done.")
		os.Exit(0)
	}
}

// InitializeObjects creates the sensor, actuator and control loop of every
// configured loop and registers them in their maps.
func InitializeObjects(pers persistence.Persistence) ([]control_loop.ControlLoop, error) {
	var loops []control_loop.ControlLoop
	for _, config := range configuration.CurrentConfig.Loops {
		sensor, err := sensors.NewSensor(config.ID, config.Sensor)
		if err != nil {
			return nil, fmt.Errorf("unable to process sensor configuration of loop %s: %w", config.ID, err)
		}

		actuator, err := actuators.NewActuator(config.ID, config.Output)
		if err != nil {
			return nil, fmt.Errorf("unable to process output configuration of loop %s: %w", config.ID, err)
		}

		loop, err := control_loop.NewControlLoop(config, pers, sensor, actuator)
		if err != nil {
			return nil, err
		}

		sensors.SensorMap.Set(config.ID, sensor)
		actuators.ActuatorMap.Set(config.ID, actuator)
		control_loop.LoopMap.Set(config.ID, loop)
		loops = append(loops, loop)
	}

	return loops, nil
}

// closeDevices releases serial ports held by sensors and actuators
func closeDevices() {
	for id, sensor := range sensors.SensorMap.Items() {
		if closer, ok := sensor.(io.Closer); ok {
			if err := closer.Close(); err != nil {
				ui.Warning("Unable to close sensor of loop %s: %v", id, err)
			}
		}
	}
	for id, actuator := range actuators.ActuatorMap.Items() {
		if closer, ok := actuator.(io.Closer); ok {
			if err := closer.Close(); err != nil {
				ui.Warning("Unable to close output of loop %s: %v", id, err)
			}
		}
	}
}
