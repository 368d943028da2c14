package probe

import (
	"fmt"

	"github.com/netapi-network/netapi/pkg/entity"
	"github.com/netapi-network/netapi/pkg/util"
)

// Ping result statuses
const (
	StatusOK       = "ok"
	StatusWarning  = "warning"
	StatusCritical = "critical"
	StatusNoRoute  = "no-route"
)

var statusCodes = map[string]int{
	StatusOK:       0,
	StatusWarning:  1,
	StatusCritical: 2,
	StatusNoRoute:  3,
}

// Thresholds are packet loss percentages above which a result is flagged.
// Nil fields are unset.
type Thresholds struct {
	Warning  *int
	Critical *int
}

// NewThresholds returns thresholds from percentages, negative meaning unset
func NewThresholds(warning, critical int) Thresholds {
	var th Thresholds
	if warning >= 0 {
		th.Warning = &warning
	}
	if critical >= 0 {
		th.Critical = &critical
	}
	return th
}

// Result is the outcome of one ping execution. PacketLoss is a ratio in
// [0, 1]; RTTs are in milliseconds.
type Result struct {
	ProbesSent     int      `json:"probes_sent"`
	ProbesReceived int      `json:"probes_received"`
	PacketLoss     float64  `json:"packet_loss"`
	RTTMin         *float64 `json:"rtt_min"`
	RTTAvg         *float64 `json:"rtt_avg"`
	RTTMax         *float64 `json:"rtt_max"`
	WarningThld    *int     `json:"warning_thld"`
	CriticalThld   *int     `json:"critical_thld"`
	Status         *string  `json:"status"`
	StatusCode     *int     `json:"status_code"`
	StatusUp       *bool    `json:"status_up"`
}

var resultSchema = entity.NewSchema("ping result",
	entity.Field[Result]{Name: "probes_sent", Set: entity.Int(func(r *Result) *int { return &r.ProbesSent })},
	entity.Field[Result]{Name: "probes_received", Set: entity.Int(func(r *Result) *int { return &r.ProbesReceived })},
	entity.Field[Result]{Name: "packet_loss", Set: entity.Float(func(r *Result) *float64 { return &r.PacketLoss })},
	entity.Field[Result]{Name: "rtt_min", Set: entity.OptFloat(func(r *Result) **float64 { return &r.RTTMin })},
	entity.Field[Result]{Name: "rtt_avg", Set: entity.OptFloat(func(r *Result) **float64 { return &r.RTTAvg })},
	entity.Field[Result]{Name: "rtt_max", Set: entity.OptFloat(func(r *Result) **float64 { return &r.RTTMax })},
	entity.Field[Result]{Name: "warning_thld", Set: entity.OptInt(func(r *Result) **int { return &r.WarningThld })},
	entity.Field[Result]{Name: "critical_thld", Set: entity.OptInt(func(r *Result) **int { return &r.CriticalThld })},
	entity.Field[Result]{Name: "status", Set: entity.OptString(func(r *Result) **string { return &r.Status })},
	entity.Field[Result]{Name: "status_code", Set: entity.OptInt(func(r *Result) **int { return &r.StatusCode })},
	entity.Field[Result]{Name: "status_up", Set: entity.OptBool(func(r *Result) **bool { return &r.StatusUp })},
)

// BuildResult creates a result from canonical fields. The status is taken
// as given; call Analyze to derive it from the packet loss.
func BuildResult(fields map[string]interface{}) (*Result, error) {
	r := &Result{}
	if err := resultSchema.Apply(r, fields); err != nil {
		return nil, err
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

// Analyze derives status, status_code and status_up from the packet loss.
// A critical threshold is checked first, then a warning threshold; a
// result under a set warning threshold is ok. Without thresholds the
// default bands apply: no loss is ok, total loss critical, anything in
// between a warning.
func (r *Result) Analyze(th Thresholds) {
	r.WarningThld, r.CriticalThld = th.Warning, th.Critical
	loss := r.PacketLoss * 100

	switch {
	case th.Critical != nil && loss > float64(*th.Critical):
		r.setStatus(StatusCritical)
	case th.Warning != nil && loss > float64(*th.Warning):
		r.setStatus(StatusWarning)
	case th.Warning != nil:
		r.setStatus(StatusOK)
	case r.PacketLoss >= 1:
		r.setStatus(StatusCritical)
	case r.PacketLoss > 0:
		r.setStatus(StatusWarning)
	default:
		r.setStatus(StatusOK)
	}
}

func (r *Result) setStatus(status string) {
	code := statusCodes[status]
	up := status == StatusOK || status == StatusWarning
	r.Status, r.StatusCode, r.StatusUp = &status, &code, &up
}

func (r *Result) status() string {
	if r.Status == nil {
		return "unknown"
	}
	return *r.Status
}

// Validate checks the loss ratio and the status triplet
func (r *Result) Validate() error {
	b := &util.ValidationBuilder{}
	b.Add(r.PacketLoss >= 0 && r.PacketLoss <= 1, "Packet loss must be between 0.0 and 1.0")
	b.Add(r.ProbesSent >= 0 && r.ProbesReceived >= 0, "probe counts must not be negative")
	if r.Status != nil {
		code, ok := statusCodes[*r.Status]
		if !ok {
			b.AddErrorf("invalid ping status %q", *r.Status)
		} else {
			b.Add(r.StatusCode == nil || *r.StatusCode == code,
				fmt.Sprintf("status_code does not match status %s", *r.Status))
		}
	}
	return b.Build()
}
