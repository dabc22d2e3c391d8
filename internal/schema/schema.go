// Package schema validates transfer drafts. Validation is pure and cheap
// enough to run on every tracked field change.
package schema

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/nyaruka/phonenumbers"
	"github.com/shopspring/decimal"
)

// Field names used as keys in a Result.
const (
	FieldRecipientName    = "recipientName"
	FieldRecipientAccount = "recipientAccount"
	FieldAmount           = "amount"
)

const (
	DefaultMinRecipientNameLen = 8
	DefaultRegion              = "GR"
)

// Draft is the candidate payload handed to Validate. Amount is pre-parsed;
// raw text that failed to parse arrives here as zero.
type Draft struct {
	RecipientName    string
	RecipientAccount string
	Amount           decimal.Decimal
}

// Result maps a field name to its ordered error messages. An empty Result
// means the draft is valid. Only the first message per field is displayed.
type Result map[string][]string

// Valid reports whether no field has errors.
func (r Result) Valid() bool {
	return len(r) == 0
}

// First returns the displayable message for a field, or "".
func (r Result) First(field string) string {
	if msgs := r[field]; len(msgs) > 0 {
		return msgs[0]
	}
	return ""
}

// Add appends a message to a field's error list.
func (r Result) Add(field, msg string) {
	r[field] = append(r[field], msg)
}

// Schema holds the configured validation rules for a transfer draft.
type Schema struct {
	validate   *validator.Validate
	minNameLen int
	region     string
	nameRule   string
}

// New builds a Schema. minNameLen <= 0 and an empty region fall back to
// the defaults. The region is used for numbers typed without a +CC prefix.
func New(minNameLen int, region string) *Schema {
	if minNameLen <= 0 {
		minNameLen = DefaultMinRecipientNameLen
	}
	if region == "" {
		region = DefaultRegion
	}

	v := validator.New()
	_ = v.RegisterValidation("phonenumber", func(fl validator.FieldLevel) bool {
		num, err := phonenumbers.Parse(fl.Field().String(), region)
		if err != nil {
			return false
		}
		return phonenumbers.IsValidNumber(num)
	})

	return &Schema{
		validate:   v,
		minNameLen: minNameLen,
		region:     region,
		nameRule:   fmt.Sprintf("required,min=%d", minNameLen),
	}
}

// Validate classifies the draft. It is a pure function of its input: no
// state is read or written, and repeated calls yield identical results.
func (s *Schema) Validate(d Draft) Result {
	res := Result{}

	if err := s.validate.Var(d.RecipientName, s.nameRule); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				switch fe.Tag() {
				case "required":
					res.Add(FieldRecipientName, "Recipient full name is required")
				case "min":
					res.Add(FieldRecipientName, fmt.Sprintf("Recipient name must be at least %d characters", s.minNameLen))
				}
			}
		} else {
			res.Add(FieldRecipientName, "Recipient full name is required")
		}
	}

	if err := s.validate.Var(d.RecipientAccount, "required,phonenumber"); err != nil {
		res.Add(FieldRecipientAccount, "Please add a valid phone number")
	}

	if !d.Amount.IsPositive() {
		res.Add(FieldAmount, "Amount must be greater than 0")
	}

	return res
}
