package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/prezentenergy/caasweb/internal/model"
	appErr "github.com/prezentenergy/caasweb/internal/pkg/errors"
	"github.com/prezentenergy/caasweb/internal/pkg/response"
	"github.com/prezentenergy/caasweb/internal/pkg/timeutil"
	"github.com/prezentenergy/caasweb/internal/service"
)

type LeadHandler struct {
	leads *service.LeadService
}

func NewLeadHandler(leads *service.LeadService) *LeadHandler {
	return &LeadHandler{leads: leads}
}

// flexStrings accepts either a single string or an array of strings.
type flexStrings []string

func (f *flexStrings) UnmarshalJSON(data []byte) error {
	var one string
	if err := json.Unmarshal(data, &one); err == nil {
		*f = flexStrings{one}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return &json.UnmarshalTypeError{Value: jsonKind(data), Type: reflect.TypeOf(many)}
	}
	*f = many
	return nil
}

// flexString accepts a string or a bare number, so fleet sizes and zip codes
// typed into numeric inputs keep their text.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return &json.UnmarshalTypeError{Value: jsonKind(data), Type: reflect.TypeOf(s)}
	}
	*f = flexString(n.String())
	return nil
}

func jsonKind(data []byte) string {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return "empty"
	}
	switch data[0] {
	case '{':
		return "object"
	case '[':
		return "array"
	case 't', 'f':
		return "bool"
	case '"':
		return "string"
	default:
		return "number"
	}
}

// Length limits are enforced by LeadService after trimming.
type leadRequest struct {
	FullName              string      `json:"full_name" form:"full_name"`
	Email                 string      `json:"email" form:"email"`
	Phone                 string      `json:"phone" form:"phone"`
	CompanyName           string      `json:"company_name" form:"company_name"`
	IndustrySegment       string      `json:"industry_segment" form:"industry_segment"`
	FleetSize             flexString  `json:"fleet_size" form:"fleet_size"`
	LocationZip           flexString  `json:"location_zip" form:"location_zip"`
	CurrentChargingStatus string      `json:"current_charging_status" form:"current_charging_status"`
	PrimaryInterests      flexStrings `json:"primary_interests" form:"primary_interests"`
	Timeline              string      `json:"timeline" form:"timeline"`
	Comments              string      `json:"comments" form:"comments"`
}

// bindLeadError sorts a binding failure into an unreadable body, which counts as an
// empty submission, or a message for a 400.
func bindLeadError(err error) (string, bool) {
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) || errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return "", false
	}
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		if typeErr.Field == "" {
			return "request body has a field of the wrong type", true
		}
		return fmt.Sprintf("%s has the wrong type (got %s)", typeErr.Field, typeErr.Value), true
	}
	return "invalid request body", true
}

type leadView struct {
	ID                    int64   `json:"id"`
	FullName              string  `json:"full_name"`
	Email                 string  `json:"email"`
	Phone                 *string `json:"phone"`
	CompanyName           *string `json:"company_name"`
	IndustrySegment       *string `json:"industry_segment"`
	FleetSize             *string `json:"fleet_size"`
	LocationZip           *string `json:"location_zip"`
	CurrentChargingStatus *string `json:"current_charging_status"`
	PrimaryInterests      *string `json:"primary_interests"`
	Timeline              *string `json:"timeline"`
	Comments              *string `json:"comments"`
	CreatedAt             string  `json:"created_at"`
}

func toLeadView(lead *model.Lead) leadView {
	return leadView{
		ID:                    lead.ID,
		FullName:              lead.FullName,
		Email:                 lead.Email,
		Phone:                 lead.Phone,
		CompanyName:           lead.CompanyName,
		IndustrySegment:       lead.IndustrySegment,
		FleetSize:             lead.FleetSize,
		LocationZip:           lead.LocationZip,
		CurrentChargingStatus: lead.CurrentChargingStatus,
		PrimaryInterests:      lead.PrimaryInterests,
		Timeline:              lead.Timeline,
		Comments:              lead.Comments,
		CreatedAt:             timeutil.FormatUnix(lead.Ctime),
	}
}

// Submit accepts the contact form as JSON or as a form post. An empty or malformed body is
// treated as an empty submission.
func (h *LeadHandler) Submit(c *gin.Context) {
	var req leadRequest
	if err := c.ShouldBind(&req); err != nil {
		msg, ok := bindLeadError(err)
		if ok {
			handleAPIError(c, appErr.Invalid(msg))
			return
		}
		req = leadRequest{}
	}
	id, err := h.leads.Submit(c.Request.Context(), service.LeadInput{
		FullName:              req.FullName,
		Email:                 req.Email,
		Phone:                 req.Phone,
		CompanyName:           req.CompanyName,
		IndustrySegment:       req.IndustrySegment,
		FleetSize:             string(req.FleetSize),
		LocationZip:           string(req.LocationZip),
		CurrentChargingStatus: req.CurrentChargingStatus,
		PrimaryInterests:      req.PrimaryInterests,
		Timeline:              req.Timeline,
		Comments:              req.Comments,
	})
	if err != nil {
		handleAPIError(c, err)
		return
	}
	response.JSON(c, http.StatusCreated, gin.H{"success": true, "id": id})
}

func (h *LeadHandler) List(c *gin.Context) {
	leads, err := h.leads.List(c.Request.Context())
	if err != nil {
		handleAPIError(c, err)
		return
	}
	items := make([]leadView, 0, len(leads))
	for _, lead := range leads {
		items = append(items, toLeadView(lead))
	}
	response.JSON(c, http.StatusOK, items)
}

func (h *LeadHandler) Export(c *gin.Context) {
	fileName := fmt.Sprintf("leads-%s.csv", time.Now().UTC().Format("20060102-150405"))
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
	c.Status(http.StatusOK)
	if _, err := h.leads.ExportCSV(c.Request.Context(), c.Writer); err != nil {
		logRequestError(c, err)
	}
}
