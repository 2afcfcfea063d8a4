package wire

import (
	"github.com/go-faster/errors"
	"github.com/go-faster/jx"

	"github.com/madangbooks/madang/internal/domain/apperr"
	"github.com/madangbooks/madang/internal/domain/sale"
)

// Error codes of the error body.
const (
	CodeValidation  = "validation"
	CodeAmbiguous   = "ambiguous_name"
	CodeIntegrity   = "integrity"
	CodeUnavailable = "storage_unavailable"
	CodeNotFound    = "not_found"
	CodeInternal    = "internal"
)

// Problem is the error body: {code, message, field?, state?, matches?}.
type Problem struct {
	Code    string
	Message string
	Field   string
	// State is the workflow state a sale stopped in, if any.
	State   string
	Matches []int64
}

// ProblemOf classifies err into a Problem.
func ProblemOf(err error) Problem {
	p := Problem{Code: CodeInternal, Message: err.Error()}

	var (
		verr *apperr.ValidationError
		amb  *apperr.AmbiguousMatchError
	)
	switch {
	case errors.As(err, &amb):
		p.Code = CodeAmbiguous
		p.Field = "customerName"
		p.Matches = amb.CustomerIDs
	case errors.As(err, &verr):
		p.Code = CodeValidation
		p.Field = verr.Field
	case errors.Is(err, apperr.ErrValidation):
		p.Code = CodeValidation
	case errors.Is(err, apperr.ErrIntegrity):
		p.Code = CodeIntegrity
	case errors.Is(err, apperr.ErrStorageUnavailable):
		p.Code = CodeUnavailable
	}
	return p
}

// SaleProblem classifies a failed sale, carrying the step it stopped at.
func SaleProblem(r sale.Result) Problem {
	p := ProblemOf(r.Err)
	p.State = r.FailedAt.String()
	return p
}

// Encode writes p.
func (p Problem) Encode(e *jx.Encoder) {
	e.ObjStart()
	e.FieldStart("code")
	e.Str(p.Code)
	e.FieldStart("message")
	e.Str(p.Message)
	if p.Field != "" {
		e.FieldStart("field")
		e.Str(p.Field)
	}
	if p.State != "" {
		e.FieldStart("state")
		e.Str(p.State)
	}
	if len(p.Matches) > 0 {
		e.FieldStart("matches")
		e.ArrStart()
		for _, id := range p.Matches {
			e.Int64(id)
		}
		e.ArrEnd()
	}
	e.ObjEnd()
}
