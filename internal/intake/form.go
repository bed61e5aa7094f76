package intake

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// Field identifies one entry in the intake form. The set is closed:
// tools and UI code can only address these seven fields.
type Field string

const (
	FieldName    Field = "name"
	FieldEmail   Field = "email"
	FieldCompany Field = "company"
	FieldPhone   Field = "phone"
	FieldService Field = "service"
	FieldBudget  Field = "budget"
	FieldNotes   Field = "notes"
)

// Fields lists every form field in display order.
var Fields = []Field{
	FieldName,
	FieldEmail,
	FieldCompany,
	FieldPhone,
	FieldService,
	FieldBudget,
	FieldNotes,
}

// IsField reports whether candidate names a member of the closed field set.
func IsField(candidate string) bool {
	switch Field(candidate) {
	case FieldName, FieldEmail, FieldCompany, FieldPhone, FieldService, FieldBudget, FieldNotes:
		return true
	}
	return false
}

// Values maps every form field to its current string value. All seven
// keys are always present.
type Values map[Field]string

func defaultValues() Values {
	vals := make(Values, len(Fields))
	for _, f := range Fields {
		vals[f] = ""
	}
	return vals
}

// clone returns an independent copy so callers never alias store state.
func (v Values) clone() Values {
	out := make(Values, len(v))
	for k, val := range v {
		out[k] = val
	}
	return out
}

// SubmissionRecord is an immutable snapshot captured by Submit.
type SubmissionRecord struct {
	Values      Values `json:"values"`
	SubmittedAt string `json:"submitted_at"`
	Source      string `json:"source"`
}

// SubmitOptions tags a submission with its origin.
type SubmitOptions struct {
	// Source defaults to "manual" when empty; the voice tool layer
	// passes "voice-agent".
	Source string
}

// Store owns the mutable intake form. All mutations are applied as a
// single atomic replace under the mutex, so readers observe either the
// pre- or post-mutation values, never a partial write.
type Store struct {
	mu             sync.Mutex
	values         Values
	submittedAt    string
	lastSubmission *SubmissionRecord
	now            func() time.Time
}

// NewStore creates a form store with all-empty defaults.
func NewStore() *Store {
	return &Store{
		values: defaultValues(),
		now:    time.Now,
	}
}

// sanitizeValue coerces arbitrary tool payload values into trimmed
// strings. Anything that is not string-like becomes empty, never nil.
func sanitizeValue(value interface{}) string {
	switch v := value.(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strings.TrimSpace(trimFloat(v))
	case int:
		return fmt.Sprintf("%d", v)
	case int64:
		return fmt.Sprintf("%d", v)
	default:
		return ""
	}
}

// trimFloat renders JSON numbers without a spurious fractional part.
func trimFloat(f float64) string {
	if f == float64(int64(f)) {
		return fmt.Sprintf("%d", int64(f))
	}
	return fmt.Sprintf("%v", f)
}

// UpdateField replaces exactly one field's value. Field validity is
// enforced by the Field type at the call boundary.
func (s *Store) UpdateField(field Field, value interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.values.clone()
	next[field] = sanitizeValue(value)
	s.values = next
}

// BulkUpdate applies every admitted key from payload. Keys outside the
// closed field set and nil values are silently ignored; an empty or nil
// payload is a no-op. It reports which fields were updated so the
// dispatch layer can surface the zero-match condition to its caller.
func (s *Store) BulkUpdate(payload map[string]interface{}) []Field {
	if len(payload) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var updated []Field
	next := s.values.clone()
	for _, f := range Fields {
		raw, ok := payload[string(f)]
		if !ok || raw == nil {
			continue
		}
		next[f] = sanitizeValue(raw)
		updated = append(updated, f)
	}

	if len(updated) > 0 {
		s.values = next
	}
	return updated
}

// Reset restores the all-empty defaults and clears the submitted-at
// marker. The last submission snapshot itself stays queryable until the
// next Submit overwrites it.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.values = defaultValues()
	s.submittedAt = ""
}

// Submit captures an immutable snapshot of the current values and
// retains it as the last submission. Repeated calls simply produce new
// snapshots with new timestamps.
func (s *Store) Submit(opts SubmitOptions) SubmissionRecord {
	source := opts.Source
	if source == "" {
		source = "manual"
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	record := SubmissionRecord{
		Values:      s.values.clone(),
		SubmittedAt: s.now().UTC().Format(time.RFC3339Nano),
		Source:      source,
	}
	s.lastSubmission = &record
	s.submittedAt = record.SubmittedAt
	return record
}

// Values returns a copy of the current form values.
func (s *Store) Values() Values {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.values.clone()
}

// SubmittedAt returns the timestamp marker of the most recent
// submission, empty after Reset.
func (s *Store) SubmittedAt() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.submittedAt
}

// LastSubmission returns the most recent submission snapshot, or nil
// when nothing has been submitted yet.
func (s *Store) LastSubmission() *SubmissionRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lastSubmission == nil {
		return nil
	}
	snap := *s.lastSubmission
	snap.Values = s.lastSubmission.Values.clone()
	return &snap
}
