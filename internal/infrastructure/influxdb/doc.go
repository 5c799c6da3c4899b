// Package influxdb provides optional time-series storage for AV Scenes Core.
//
// It wraps the official influxdb-client-go v2 library with connection
// management, batched writes, and health monitoring.
//
// # Purpose
//
// This package handles time-series data storage for:
//   - Activity transition history (duration, command counts, failures)
//   - Per-device command outcomes
//
// # Usage
//
//	cfg := config.InfluxDBConfig{
//	    Enabled: true,
//	    URL:     "http://localhost:8086",
//	    Token:   "your-token",
//	    Org:     "avscenes",
//	    Bucket:  "history",
//	}
//
//	client, err := influxdb.Connect(cfg)
//	if err != nil {
//	    // errors.Is(err, influxdb.ErrDisabled) means run without history
//	    return err
//	}
//	defer client.Close()
//
//	client.WriteTransition("living_room", "start", "", "movie", 5, 0, duration)
//
// # Thread Safety
//
// All methods are safe for concurrent use from multiple goroutines.
// The underlying write API uses non-blocking batched writes.
//
// # Error Handling
//
// Write operations are non-blocking and batch errors are delivered via the
// SetOnError callback. Connection and health check errors are returned
// directly.
package influxdb
