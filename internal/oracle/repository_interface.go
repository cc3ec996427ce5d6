package oracle

import "context"

type Repository interface {
	Create(ctx context.Context, req CreateProfileRequest) (*Profile, error)
	GetByID(ctx context.Context, id int) (*Profile, error)
	GetByUserID(ctx context.Context, userID int) (*Profile, error)
	List(ctx context.Context) ([]Profile, error)
	SetOnline(ctx context.Context, oracleID int, online bool) error
	AddSchedule(ctx context.Context, oracleID int, req CreateScheduleRequest) (*ScheduleEntry, error)
	GetSchedules(ctx context.Context, oracleID int) ([]ScheduleEntry, error)
}
