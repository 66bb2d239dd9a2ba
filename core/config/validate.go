package config

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Validate rejects a Config that would make the lock, rate-limit or
// dispatch layers misbehave in ways that are better caught at startup
// than discovered from the first request.
func (c *Config) Validate() error {
	return validation.Errors{
		"app.port":                                 validation.Validate(c.App.Port, validation.Required),
		"app.onValidJsonRpcResponseStatusCode":      validation.Validate(c.App.OnValidJsonRpcResponseStatusCode, validation.In(200, 400)),
		"valkey.address":                            validation.Validate(c.Valkey.Address, validation.Required.When(c.Valkey.Enabled)),
		"lock.maxHold":                              validation.Validate(c.Lock.MaxHold, validation.Min(time.Second)),
		"lock.queuePollInterval":                    validation.Validate(c.Lock.QueuePollInterval, validation.Min(10*time.Millisecond)),
		"lock.heartbeatMissedCount":                 validation.Validate(c.Lock.HeartbeatMissedCount, validation.Min(2)),
		"lock.localMaxEntries":                      validation.Validate(c.Lock.LocalMaxEntries, validation.Min(1)),
		"lock.janitorWorkers":                       validation.Validate(c.Lock.JanitorWorkers, validation.Min(1)),
		"lock.janitorSweepInterval":                 validation.Validate(c.Lock.JanitorSweepInterval, validation.Min(time.Second)),
		"rateLimit.defaultLimit":                    validation.Validate(c.RateLimit.DefaultLimit, validation.Min(1)),
		"rateLimit.duration":                        validation.Validate(c.RateLimit.Duration, validation.Min(time.Second)),
		"dispatch.batchMaxSize":                     validation.Validate(c.Dispatch.BatchMaxSize, validation.Min(1)),
		"dispatch.callDataSizeLimit":                validation.Validate(c.Dispatch.CallDataSizeLimit, validation.Min(1)),
		"dispatch.rawTxSizeLimit":                   validation.Validate(c.Dispatch.RawTxSizeLimit, validation.Min(1)),
	}.Filter()
}
