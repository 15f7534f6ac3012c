package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/prezentenergy/caasweb/internal/model"
	appErr "github.com/prezentenergy/caasweb/internal/pkg/errors"
	"github.com/prezentenergy/caasweb/internal/pkg/timeutil"
)

// LeadInput is the raw contact form. PrimaryInterests may hold one free-text value or the
// checked options of a multi-select.
type LeadInput struct {
	FullName              string
	Email                 string
	Phone                 string
	CompanyName           string
	IndustrySegment       string
	FleetSize             string
	LocationZip           string
	CurrentChargingStatus string
	PrimaryInterests      []string
	Timeline              string
	Comments              string
}

var leadFieldLimits = []struct {
	name  string
	limit int
	value func(in *LeadInput) string
}{
	{"full_name", 120, func(in *LeadInput) string { return in.FullName }},
	{"email", 120, func(in *LeadInput) string { return in.Email }},
	{"phone", 30, func(in *LeadInput) string { return in.Phone }},
	{"company_name", 150, func(in *LeadInput) string { return in.CompanyName }},
	{"industry_segment", 60, func(in *LeadInput) string { return in.IndustrySegment }},
	{"fleet_size", 30, func(in *LeadInput) string { return in.FleetSize }},
	{"location_zip", 20, func(in *LeadInput) string { return in.LocationZip }},
	{"current_charging_status", 60, func(in *LeadInput) string { return in.CurrentChargingStatus }},
	{"timeline", 60, func(in *LeadInput) string { return in.Timeline }},
}

var leadCSVHeader = []string{
	"id", "full_name", "email", "phone", "company_name", "industry_segment", "fleet_size",
	"location_zip", "current_charging_status", "primary_interests", "timeline", "comments", "created_at",
}

type LeadService struct {
	leads LeadRepository
	now   func() time.Time
}

func NewLeadService(leads LeadRepository) *LeadService {
	return &LeadService{leads: leads, now: time.Now}
}

func (s *LeadService) Submit(ctx context.Context, in LeadInput) (int64, error) {
	in.normalize()
	if in.FullName == "" || in.Email == "" {
		return 0, appErr.Invalid("full_name and email are required")
	}
	for _, f := range leadFieldLimits {
		if n := len([]rune(f.value(&in))); n > f.limit {
			return 0, appErr.Invalid(fmt.Sprintf("%s must be at most %d characters", f.name, f.limit))
		}
	}
	lead := &model.Lead{
		FullName:              in.FullName,
		Email:                 in.Email,
		Phone:                 optional(in.Phone),
		CompanyName:           optional(in.CompanyName),
		IndustrySegment:       optional(in.IndustrySegment),
		FleetSize:             optional(in.FleetSize),
		LocationZip:           optional(in.LocationZip),
		CurrentChargingStatus: optional(in.CurrentChargingStatus),
		PrimaryInterests:      optional(strings.Join(in.PrimaryInterests, ", ")),
		Timeline:              optional(in.Timeline),
		Comments:              optional(in.Comments),
		Ctime:                 s.now().Unix(),
	}
	id, err := s.leads.Create(ctx, lead)
	if err != nil {
		return 0, fmt.Errorf("create lead: %w", err)
	}
	logutil.GetLogger(ctx).Info("lead captured", zap.Int64("lead_id", id))
	return id, nil
}

func (s *LeadService) List(ctx context.Context) ([]*model.Lead, error) {
	return s.leads.List(ctx)
}

// ExportCSV writes every lead as CSV to w and returns the number of rows written.
func (s *LeadService) ExportCSV(ctx context.Context, w io.Writer) (int, error) {
	leads, err := s.leads.List(ctx)
	if err != nil {
		return 0, err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(leadCSVHeader); err != nil {
		return 0, err
	}
	for _, lead := range leads {
		if err := cw.Write(leadRecord(lead)); err != nil {
			return 0, err
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return 0, err
	}
	return len(leads), nil
}

func (in *LeadInput) normalize() {
	in.FullName = strings.TrimSpace(in.FullName)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Phone = strings.TrimSpace(in.Phone)
	in.CompanyName = strings.TrimSpace(in.CompanyName)
	in.IndustrySegment = strings.TrimSpace(in.IndustrySegment)
	in.FleetSize = strings.TrimSpace(in.FleetSize)
	in.LocationZip = strings.TrimSpace(in.LocationZip)
	in.CurrentChargingStatus = strings.TrimSpace(in.CurrentChargingStatus)
	in.Timeline = strings.TrimSpace(in.Timeline)
	in.Comments = strings.TrimSpace(in.Comments)
	interests := make([]string, 0, len(in.PrimaryInterests))
	for _, item := range in.PrimaryInterests {
		if item = strings.TrimSpace(item); item != "" {
			interests = append(interests, item)
		}
	}
	in.PrimaryInterests = interests
}

func leadRecord(lead *model.Lead) []string {
	return []string{
		strconv.FormatInt(lead.ID, 10),
		lead.FullName,
		lead.Email,
		deref(lead.Phone),
		deref(lead.CompanyName),
		deref(lead.IndustrySegment),
		deref(lead.FleetSize),
		deref(lead.LocationZip),
		deref(lead.CurrentChargingStatus),
		deref(lead.PrimaryInterests),
		deref(lead.Timeline),
		deref(lead.Comments),
		timeutil.FormatUnix(lead.Ctime),
	}
}

func optional(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

func deref(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
