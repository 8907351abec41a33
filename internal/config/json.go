package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// StructuredJSONConfig mirrors StructuredConfig for file-based
// configuration, with durations accepted as "1h"-style strings.
type StructuredJSONConfig struct {
	Auth struct {
		TokenSignKey   string   `json:"token_sign_key"`
		TokenIssuer    string   `json:"token_issuer"`
		TokenDuration  Duration `json:"token_duration"`
		TicketDuration Duration `json:"ticket_duration"`
	} `json:"auth,omitempty"`

	Storage struct {
		DB struct {
			DSN                string `json:"dsn"`
			ChangeLogRetention int    `json:"changelog_retention"`
		} `json:"db,omitempty"`
		Client struct {
			Path string `json:"db_path"`
		} `json:"client,omitempty"`
	} `json:"storage,omitempty"`

	Server struct {
		HTTPAddress    string   `json:"http_address"`
		RequestTimeout Duration `json:"request_timeout"`
	} `json:"server,omitempty"`

	Adapter struct {
		HTTPAddress    string   `json:"http_address"`
		RequestTimeout Duration `json:"request_timeout"`
	} `json:"adapter,omitempty"`

	Engine struct {
		QueueCap              int      `json:"queue_cap"`
		CompactionThreshold   int      `json:"compaction_threshold"`
		PushBatchSize         int      `json:"push_batch_size"`
		BackoffBase           Duration `json:"backoff_base"`
		BackoffMax            Duration `json:"backoff_max"`
		ConflictLoopWindow    Duration `json:"conflict_loop_window"`
		ConflictLoopCount     int      `json:"conflict_loop_count"`
		RealtimeFailureLimit  int      `json:"realtime_failure_limit"`
		RealtimeFailureWindow Duration `json:"realtime_failure_window"`
		HeartbeatHealthy      Duration `json:"heartbeat_healthy"`
		HeartbeatFallback     Duration `json:"heartbeat_fallback"`
		FlushInterval         Duration `json:"flush_interval"`
	} `json:"engine,omitempty"`
}

func parseJSON(jsonFilePath string) (*StructuredConfig, error) {
	jsonFile, err := os.Open(jsonFilePath)
	if err != nil {
		return nil, fmt.Errorf("error reading a json file: %w", err)
	}
	defer jsonFile.Close()

	var jsonCfg StructuredJSONConfig
	if err := json.NewDecoder(jsonFile).Decode(&jsonCfg); err != nil {
		return nil, fmt.Errorf("error decoding json configs: %w", err)
	}

	cfg := &StructuredConfig{
		Auth: Auth{
			TokenSignKey:   jsonCfg.Auth.TokenSignKey,
			TokenIssuer:    jsonCfg.Auth.TokenIssuer,
			TokenDuration:  time.Duration(jsonCfg.Auth.TokenDuration),
			TicketDuration: time.Duration(jsonCfg.Auth.TicketDuration),
		},
		Storage: Storage{
			DB: DB{
				DSN:                jsonCfg.Storage.DB.DSN,
				ChangeLogRetention: jsonCfg.Storage.DB.ChangeLogRetention,
			},
			Client: ClientDB{Path: jsonCfg.Storage.Client.Path},
		},
		Server: Server{
			HTTPAddress:    jsonCfg.Server.HTTPAddress,
			RequestTimeout: time.Duration(jsonCfg.Server.RequestTimeout),
		},
		Adapter: Adapter{
			HTTPAddress:    jsonCfg.Adapter.HTTPAddress,
			RequestTimeout: time.Duration(jsonCfg.Adapter.RequestTimeout),
		},
		Engine: Engine{
			QueueCap:              jsonCfg.Engine.QueueCap,
			CompactionThreshold:   jsonCfg.Engine.CompactionThreshold,
			PushBatchSize:         jsonCfg.Engine.PushBatchSize,
			BackoffBase:           time.Duration(jsonCfg.Engine.BackoffBase),
			BackoffMax:            time.Duration(jsonCfg.Engine.BackoffMax),
			ConflictLoopWindow:    time.Duration(jsonCfg.Engine.ConflictLoopWindow),
			ConflictLoopCount:     jsonCfg.Engine.ConflictLoopCount,
			RealtimeFailureLimit:  jsonCfg.Engine.RealtimeFailureLimit,
			RealtimeFailureWindow: time.Duration(jsonCfg.Engine.RealtimeFailureWindow),
			HeartbeatHealthy:      time.Duration(jsonCfg.Engine.HeartbeatHealthy),
			HeartbeatFallback:     time.Duration(jsonCfg.Engine.HeartbeatFallback),
			FlushInterval:         time.Duration(jsonCfg.Engine.FlushInterval),
		},
	}

	return cfg, nil
}

// Duration is a wrapper around time.Duration that supports JSON
// unmarshaling from strings like "1h", "30s".
type Duration time.Duration

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	switch value := v.(type) {
	case float64:
		*d = Duration(time.Duration(value))
		return nil
	case string:
		tmp, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		*d = Duration(tmp)
		return nil
	default:
		return json.Unmarshal(b, (*time.Duration)(d))
	}
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}
