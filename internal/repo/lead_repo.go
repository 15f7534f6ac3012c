package repo

import (
	"context"
	"database/sql"

	"github.com/didi/gendry/builder"

	"github.com/prezentenergy/caasweb/internal/model"
	"github.com/prezentenergy/caasweb/internal/pkg/dbutil"
)

var leadFields = []string{
	"id", "full_name", "email", "phone", "company_name", "industry_segment", "fleet_size",
	"location_zip", "current_charging_status", "primary_interests", "timeline", "comments", "ctime",
}

type LeadRepo struct {
	db *sql.DB
}

func NewLeadRepo(db *sql.DB) *LeadRepo {
	return &LeadRepo{db: db}
}

func (r *LeadRepo) Create(ctx context.Context, lead *model.Lead) (int64, error) {
	data := map[string]interface{}{
		"full_name":               lead.FullName,
		"email":                   lead.Email,
		"phone":                   lead.Phone,
		"company_name":            lead.CompanyName,
		"industry_segment":        lead.IndustrySegment,
		"fleet_size":              lead.FleetSize,
		"location_zip":            lead.LocationZip,
		"current_charging_status": lead.CurrentChargingStatus,
		"primary_interests":       lead.PrimaryInterests,
		"timeline":                lead.Timeline,
		"comments":                lead.Comments,
		"ctime":                   lead.Ctime,
	}
	sqlStr, args, err := builder.BuildInsert("leads", []map[string]interface{}{data})
	if err != nil {
		return 0, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr+" RETURNING id", args)
	var id int64
	if err := dbutil.Conn(ctx, r.db).QueryRowContext(ctx, sqlStr, args...).Scan(&id); err != nil {
		return 0, err
	}
	lead.ID = id
	return id, nil
}

// List returns every lead, newest first.
func (r *LeadRepo) List(ctx context.Context) ([]*model.Lead, error) {
	where := map[string]interface{}{"_orderby": "ctime desc, id desc"}
	sqlStr, args, err := builder.BuildSelect("leads", where, leadFields)
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := dbutil.Conn(ctx, r.db).QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	items := make([]*model.Lead, 0)
	for rows.Next() {
		var lead model.Lead
		if err := rows.Scan(
			&lead.ID, &lead.FullName, &lead.Email, &lead.Phone, &lead.CompanyName, &lead.IndustrySegment,
			&lead.FleetSize, &lead.LocationZip, &lead.CurrentChargingStatus, &lead.PrimaryInterests,
			&lead.Timeline, &lead.Comments, &lead.Ctime,
		); err != nil {
			return nil, err
		}
		items = append(items, &lead)
	}
	return items, rows.Err()
}
