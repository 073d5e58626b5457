package models

// ============================================================================
// POLICY REQUESTS
// ============================================================================

// CreatePolicyRequest carries an optional override for every shape field;
// unset fields fall back to the standard defaults.
type CreatePolicyRequest struct {
	Name             string  `json:"name"`
	Status           *string `json:"status"`
	UseTPEOn         *bool   `json:"use_tpe_on"`
	UseInternet      *bool   `json:"use_internet"`
	UseGeofence      *bool   `json:"use_geofence"`
	UseBattery       *bool   `json:"use_battery"`
	UsePaper         *bool   `json:"use_paper"`
	BatteryMinPct    *int    `json:"battery_min_pct"`
	DailyFailN       *int    `json:"daily_fail_n"`
	WeeklyFailDays   *int    `json:"weekly_fail_days"`
	WeeklyFailSlots  *int    `json:"weekly_fail_slots"`
	SlotHours        []int   `json:"slot_hours"`
	PaperMode        *string `json:"paper_mode"`
	WeeklyAutoStrict *bool   `json:"weekly_auto_strict"`
}

// Shape materializes the requested shape, applying defaults for unset
// fields and normalizing the result.
func (r CreatePolicyRequest) Shape() PolicyShape {
	s := DefaultShape()
	if r.UseTPEOn != nil {
		s.UseTPEOn = *r.UseTPEOn
	}
	if r.UseInternet != nil {
		s.UseInternet = *r.UseInternet
	}
	if r.UseGeofence != nil {
		s.UseGeofence = *r.UseGeofence
	}
	if r.UseBattery != nil {
		s.UseBattery = *r.UseBattery
	}
	if r.UsePaper != nil {
		s.UsePaper = *r.UsePaper
	}
	if r.BatteryMinPct != nil {
		s.BatteryMinPct = *r.BatteryMinPct
	}
	if r.DailyFailN != nil {
		s.DailyFailN = *r.DailyFailN
	}
	if r.WeeklyFailDays != nil {
		s.WeeklyFailDays = r.WeeklyFailDays
	}
	if r.WeeklyFailSlots != nil {
		s.WeeklyFailSlots = r.WeeklyFailSlots
	}
	if r.SlotHours != nil {
		s.SlotHours = NormalizeSlotHours(r.SlotHours)
	}
	if r.PaperMode != nil {
		s.PaperMode = PaperMode(*r.PaperMode)
	}
	if r.WeeklyAutoStrict != nil {
		s.WeeklyAutoStrict = *r.WeeklyAutoStrict
	}
	return s.Normalize()
}

// UpdatePolicyRequest distinguishes display edits (name, status) from shape
// edits; only the latter bump the policy version.
type UpdatePolicyRequest struct {
	Name             *string `json:"name"`
	Status           *string `json:"status"`
	UseTPEOn         *bool   `json:"use_tpe_on"`
	UseInternet      *bool   `json:"use_internet"`
	UseGeofence      *bool   `json:"use_geofence"`
	UseBattery       *bool   `json:"use_battery"`
	UsePaper         *bool   `json:"use_paper"`
	BatteryMinPct    *int    `json:"battery_min_pct"`
	DailyFailN       *int    `json:"daily_fail_n"`
	WeeklyFailDays   *int    `json:"weekly_fail_days"`
	WeeklyFailSlots  *int    `json:"weekly_fail_slots"`
	SlotHours        []int   `json:"slot_hours"`
	PaperMode        *string `json:"paper_mode"`
	WeeklyAutoStrict *bool   `json:"weekly_auto_strict"`
}

// MergeShape overlays the request's shape fields onto the current shape and
// normalizes the result.
func (r UpdatePolicyRequest) MergeShape(current PolicyShape) PolicyShape {
	s := current
	if r.UseTPEOn != nil {
		s.UseTPEOn = *r.UseTPEOn
	}
	if r.UseInternet != nil {
		s.UseInternet = *r.UseInternet
	}
	if r.UseGeofence != nil {
		s.UseGeofence = *r.UseGeofence
	}
	if r.UseBattery != nil {
		s.UseBattery = *r.UseBattery
	}
	if r.UsePaper != nil {
		s.UsePaper = *r.UsePaper
	}
	if r.BatteryMinPct != nil {
		s.BatteryMinPct = *r.BatteryMinPct
	}
	if r.DailyFailN != nil {
		s.DailyFailN = *r.DailyFailN
	}
	if r.WeeklyFailDays != nil {
		s.WeeklyFailDays = r.WeeklyFailDays
	}
	if r.WeeklyFailSlots != nil {
		s.WeeklyFailSlots = r.WeeklyFailSlots
	}
	if r.SlotHours != nil {
		s.SlotHours = NormalizeSlotHours(r.SlotHours)
	}
	if r.PaperMode != nil {
		s.PaperMode = PaperMode(*r.PaperMode)
	}
	if r.WeeklyAutoStrict != nil {
		s.WeeklyAutoStrict = *r.WeeklyAutoStrict
	}
	return s.Normalize()
}

type SetWeekLockRequest struct {
	WeekYear   int   `json:"week_year"`
	WeekNumber int   `json:"week_number"`
	PolicyID   int64 `json:"policy_id"`
}

// ============================================================================
// COMPUTE REQUESTS
// ============================================================================

type ComputeDailyRequest struct {
	Date      string  `json:"date"`
	WeekStart *string `json:"week_start"`
	PolicyID  *int64  `json:"policy_id"`
}

type ComputeWeeklyRequest struct {
	WeekStart string `json:"week_start"`
	PolicyID  *int64 `json:"policy_id"`
	Auto      bool   `json:"auto"`
}

type ComputeResponse struct {
	Count int `json:"count"`
}

// ============================================================================
// RESULT LISTING FILTERS
// ============================================================================

const (
	DefaultDailyPageSize  = 200
	DefaultWeeklyPageSize = 50
)

// ResultFilter narrows a daily or weekly listing. Search is a terminal
// serial substring match.
type ResultFilter struct {
	Search   string
	Status   AvailabilityStatus
	Page     int
	PageSize int
	SortBy   string
	Order    string
}

// weeklySortColumns is the whitelist of sortable weekly columns; anything
// else falls back to terminal serial order.
var weeklySortColumns = map[string]bool{
	"days_fail":        true,
	"slots_fail_total": true,
	"slots_ok_total":   true,
}

// Normalize clamps pagination, defaults the status filter and validates the
// sort column against the whitelist.
func (f ResultFilter) Normalize(defaultPageSize int) ResultFilter {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 {
		f.PageSize = defaultPageSize
	}
	if f.PageSize > 1000 {
		f.PageSize = 1000
	}
	if !f.Status.Valid() || f.Status == "" {
		f.Status = StatusAll
	}
	if !weeklySortColumns[f.SortBy] {
		f.SortBy = ""
	}
	if f.Order != "asc" {
		f.Order = "desc"
	}
	return f
}
