package oracle

import "time"

type Profile struct {
	ID               int       `db:"id" json:"id"`
	UserID           int       `db:"user_id" json:"user_id"`
	OwnerUserID      *int      `db:"owner_user_id" json:"owner_user_id,omitempty"`
	DisplayName      string    `db:"display_name" json:"display_name"`
	Specialty        string    `db:"specialty" json:"specialty"`
	Bio              string    `db:"bio" json:"bio"`
	Personality      string    `db:"personality" json:"personality"`
	SystemPrompt     string    `db:"system_prompt" json:"-"`
	IsAI             bool      `db:"is_ai" json:"-"`
	IsOnline         bool      `db:"is_online" json:"is_online"`
	PricePerQuestion int64     `db:"price_per_question" json:"price_per_question"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
}

// ScheduleEntry is one weekly availability window. Minutes are counted from
// midnight in the platform's local time.
type ScheduleEntry struct {
	ID          int `db:"id" json:"id"`
	OracleID    int `db:"oracle_id" json:"oracle_id"`
	Weekday     int `db:"weekday" json:"weekday"` // 0 = Sunday
	StartMinute int `db:"start_minute" json:"start_minute"`
	EndMinute   int `db:"end_minute" json:"end_minute"`
}

// DerivedOnline reports whether the oracle counts as online right now: the
// explicit flag wins, otherwise the weekly schedule is consulted.
func DerivedOnline(p *Profile, entries []ScheduleEntry, now time.Time) bool {
	if p.IsOnline {
		return true
	}
	weekday := int(now.Weekday())
	minute := now.Hour()*60 + now.Minute()
	for _, e := range entries {
		if e.Weekday != weekday {
			continue
		}
		if minute >= e.StartMinute && minute < e.EndMinute {
			return true
		}
	}
	return false
}

type CreateProfileRequest struct {
	UserID           int    `json:"user_id" binding:"required"`
	OwnerUserID      *int   `json:"owner_user_id"`
	DisplayName      string `json:"display_name" binding:"required"`
	Specialty        string `json:"specialty"`
	Bio              string `json:"bio"`
	Personality      string `json:"personality"`
	SystemPrompt     string `json:"system_prompt"`
	IsAI             bool   `json:"is_ai"`
	PricePerQuestion int64  `json:"price_per_question" binding:"required,gt=0"`
}

type CreateScheduleRequest struct {
	Weekday     int `json:"weekday" binding:"min=0,max=6"`
	StartMinute int `json:"start_minute" binding:"min=0,max=1439"`
	EndMinute   int `json:"end_minute" binding:"required,min=1,max=1440"`
}
