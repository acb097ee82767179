package db

import (
	"encoding/json"
	"strconv"
	"time"

	bolt "go.etcd.io/bbolt"
)

type GateSettings struct {
	Enabled bool `json:"enabled"`
}

type GateStats struct {
	Passed      int64 `json:"passed"`
	Kicked      int64 `json:"kicked"`
	AdminPassed int64 `json:"admin_passed"`
	AdminKicked int64 `json:"admin_kicked"`
	TimedOut    int64 `json:"timed_out"`
}

// OutcomeRecord is one resolved verification, keyed by instance id.
type OutcomeRecord struct {
	ChatID   int64     `json:"chat_id"`
	UserID   int64     `json:"user_id"`
	Outcome  string    `json:"outcome"`
	Resolved time.Time `json:"resolved"`
}

func ensureGateBuckets(db *bolt.DB) error {
	return db.Update(func(tx *bolt.Tx) error {
		for _, name := range []string{"gate_settings", "gate_stats", "gate_log"} {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return err
			}
		}
		return nil
	})
}

func chatKey(chatID int64) []byte {
	return []byte(strconv.FormatInt(chatID, 10))
}

func SetGateEnabled(chatID int64, enabled bool) error {
	db, err := GetDB()
	if err != nil {
		return err
	}
	if err := ensureGateBuckets(db); err != nil {
		return err
	}

	return db.Update(func(tx *bolt.Tx) error {
		data, err := json.Marshal(&GateSettings{Enabled: enabled})
		if err != nil {
			return err
		}
		return tx.Bucket([]byte("gate_settings")).Put(chatKey(chatID), data)
	})
}

// GateEnabled defaults to true for chats with no stored setting.
func GateEnabled(chatID int64) bool {
	db, err := GetDB()
	if err != nil {
		return true
	}

	enabled := true
	db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte("gate_settings"))
		if bucket == nil {
			return nil
		}
		data := bucket.Get(chatKey(chatID))
		if data == nil {
			return nil
		}
		var settings GateSettings
		if err := json.Unmarshal(data, &settings); err == nil {
			enabled = settings.Enabled
		}
		return nil
	})
	return enabled
}

// RecordOutcome bumps the per-chat counter for the outcome and logs the
// resolved instance. Best-effort; callers log and move on.
func RecordOutcome(chatID, userID int64, instanceID, outcome string) error {
	db, err := GetDB()
	if err != nil {
		return err
	}
	if err := ensureGateBuckets(db); err != nil {
		return err
	}

	return db.Update(func(tx *bolt.Tx) error {
		stats := &GateStats{}
		bucket := tx.Bucket([]byte("gate_stats"))
		if data := bucket.Get(chatKey(chatID)); data != nil {
			json.Unmarshal(data, stats)
		}
		switch outcome {
		case "pass":
			stats.Passed++
		case "kick":
			stats.Kicked++
		case "admin_pass":
			stats.AdminPassed++
		case "admin_kick":
			stats.AdminKicked++
		case "timeout":
			stats.TimedOut++
		}
		data, err := json.Marshal(stats)
		if err != nil {
			return err
		}
		if err := bucket.Put(chatKey(chatID), data); err != nil {
			return err
		}

		record, err := json.Marshal(&OutcomeRecord{
			ChatID:   chatID,
			UserID:   userID,
			Outcome:  outcome,
			Resolved: time.Now(),
		})
		if err != nil {
			return err
		}
		return tx.Bucket([]byte("gate_log")).Put([]byte(instanceID), record)
	})
}

func GetGateStats(chatID int64) (*GateStats, error) {
	db, err := GetDB()
	if err != nil {
		return nil, err
	}

	stats := &GateStats{}
	err = db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte("gate_stats"))
		if bucket == nil {
			return nil
		}
		if data := bucket.Get(chatKey(chatID)); data != nil {
			return json.Unmarshal(data, stats)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return stats, nil
}
