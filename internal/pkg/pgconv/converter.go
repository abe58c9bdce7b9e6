package pgconv

import (
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

// IntFromPgtype maps NULL to zero.
func IntFromPgtype(pi pgtype.Int4) int {
	if !pi.Valid {
		return 0
	}
	return int(pi.Int32)
}

// PositiveIntToPgtype stores non-positive ids as NULL.
func PositiveIntToPgtype(v int) pgtype.Int4 {
	if v <= 0 {
		return pgtype.Int4{Valid: false}
	}
	return pgtype.Int4{Int32: int32(v), Valid: true}
}

func Int64FromPgtype(pi pgtype.Int8) int64 {
	if !pi.Valid {
		return 0
	}
	return pi.Int64
}

func PositiveInt64ToPgtype(v int64) pgtype.Int8 {
	if v <= 0 {
		return pgtype.Int8{Valid: false}
	}
	return pgtype.Int8{Int64: v, Valid: true}
}

func TimePtrFromPgtype(pt pgtype.Timestamptz) *time.Time {
	if !pt.Valid {
		return nil
	}
	t := pt.Time
	return &t
}

func TimePtrToPgtype(t *time.Time) pgtype.Timestamptz {
	if t == nil {
		return pgtype.Timestamptz{Valid: false}
	}
	return pgtype.Timestamptz{Time: *t, Valid: true}
}
