package persistence

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/billtubbs/pid-ref/internal/pid"
	"github.com/billtubbs/pid-ref/internal/ui"
	bolt "go.etcd.io/bbolt"
)

const (
	BucketLoops = "loops"
)

var ErrNotFound = errors.New("no persisted data found")

// LoopSnapshot is the part of a control loop that survives a restart
type LoopSnapshot struct {
	// U is the last control signal applied to the actuator
	U       float64   `json:"u"`
	Mode    pid.Mode  `json:"mode"`
	SavedAt time.Time `json:"savedAt"`
}

type Persistence interface {
	Init() error

	LoadLoopSnapshot(loopId string) (LoopSnapshot, error)
	SaveLoopSnapshot(loopId string, snapshot LoopSnapshot) (err error)
	DeleteLoopSnapshot(loopId string) (err error)
}

type persistence struct {
	dbPath string
}

func NewPersistence(dbPath string) Persistence {
	p := &persistence{
		dbPath: dbPath,
	}
	return p
}

func (p persistence) Init() (err error) {
	// get parent path of dbPath
	parentDir := filepath.Dir(p.dbPath)
	_, err = os.Stat(parentDir)
	if errors.Is(err, os.ErrNotExist) {
		// create directory
		ui.Info("Creating directory for db: %s", parentDir)
		err = os.MkdirAll(parentDir, 0755)
		if err != nil {
			return err
		}
	}
	return nil
}

func (p persistence) openPersistence() (db *bolt.DB, err error) {
	db, err = bolt.Open(p.dbPath, 0600, &bolt.Options{Timeout: 1 * time.Minute})
	if err != nil {
		return nil, err
	}
	return db, nil
}

// SaveLoopSnapshot saves the snapshot of the given loop to persistence
func (p persistence) SaveLoopSnapshot(loopId string, snapshot LoopSnapshot) (err error) {
	db, err := p.openPersistence()
	if err != nil {
		return err
	}
	defer func(db *bolt.DB) {
		_ = db.Close()
	}(db)

	data, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}

	return db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(BucketLoops))
		if err != nil {
			return fmt.Errorf("create bucket: %s", err)
		}
		return b.Put([]byte(loopId), data)
	})
}

// LoadLoopSnapshot loads the snapshot of the given loop from persistence
func (p persistence) LoadLoopSnapshot(loopId string) (LoopSnapshot, error) {
	var snapshot LoopSnapshot

	db, err := p.openPersistence()
	if err != nil {
		return snapshot, err
	}
	defer func(db *bolt.DB) {
		_ = db.Close()
	}(db)

	err = db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(BucketLoops))
		if b == nil {
			return ErrNotFound
		}
		v := b.Get([]byte(loopId))
		if v == nil {
			return ErrNotFound
		}

		err := json.Unmarshal(v, &snapshot)
		if err != nil {
			// if we cannot read the saved data, delete it
			ui.Warning("Unable to unmarshal saved loop data for %s: %v", loopId, err)
			err := b.Delete([]byte(loopId))
			if err != nil {
				ui.Error("Unable to delete corrupt data key %s: %v", loopId, err)
			}
			return ErrNotFound
		}
		return nil
	})

	return snapshot, err
}

// DeleteLoopSnapshot removes the snapshot of the given loop, if any
func (p persistence) DeleteLoopSnapshot(loopId string) error {
	db, err := p.openPersistence()
	if err != nil {
		return err
	}
	defer func(db *bolt.DB) {
		_ = db.Close()
	}(db)

	return db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(BucketLoops))
		if b == nil {
			return nil
		}
		return b.Delete([]byte(loopId))
	})
}
