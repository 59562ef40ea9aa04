package model

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Kind is the closed set of button actions.
type Kind string

const (
	KindAppSwitch  Kind = "app_switch"
	KindRunScript  Kind = "run_script"
	KindPageSwitch Kind = "page_switch"
)

// ParseKind validates s against the known kinds.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case KindAppSwitch, KindRunScript, KindPageSwitch:
		return k, nil
	}
	return "", &Error{Code: CodeInvalidKind, Entity: EntityFunctionality, Field: "kind", Msg: fmt.Sprintf("unknown kind %q", s)}
}

// Action is the payload of a Functionality. The only implementations are
// AppSwitch, RunScript and PageSwitch.
type Action interface {
	Kind() Kind
	validate() error
}

// AppSwitch brings an application to the foreground.
type AppSwitch struct {
	AppName string
}

func (AppSwitch) Kind() Kind { return KindAppSwitch }

func (a AppSwitch) validate() error {
	if strings.TrimSpace(a.AppName) == "" {
		return missingField("app_name")
	}
	return checkText("app_name", a.AppName)
}

// RunScript runs a script on the host. ScriptPath is a filesystem path and is
// not subject to the image filename rule.
type RunScript struct {
	ScriptPath string
}

func (RunScript) Kind() Kind { return KindRunScript }

func (r RunScript) validate() error {
	if strings.TrimSpace(r.ScriptPath) == "" {
		return missingField("script_path")
	}
	return checkText("script_path", r.ScriptPath)
}

// PageSwitch makes another board the active one.
type PageSwitch struct {
	TargetBoardID uuid.UUID
}

func (PageSwitch) Kind() Kind { return KindPageSwitch }

func (p PageSwitch) validate() error {
	if p.TargetBoardID == uuid.Nil {
		return missingField("target_board_id")
	}
	return nil
}

func checkText(field, value string) error {
	if IsStorableText(value) {
		return nil
	}
	return &Error{Code: CodeInvalidValue, Entity: EntityFunctionality, Field: field, Msg: "must be valid UTF-8 without NUL bytes"}
}

func missingField(field string) error {
	return &Error{Code: CodeMissingRequiredField, Entity: EntityFunctionality, Field: field, Msg: "required field is empty"}
}

// ValidateAction checks the kind-specific required field of a.
func ValidateAction(a Action) error {
	if a == nil {
		return &Error{Code: CodeInvalidKind, Entity: EntityFunctionality, Field: "kind", Msg: "no action"}
	}
	return a.validate()
}

// Functionality binds an Action to a button. A button has at most one.
type Functionality struct {
	ID       uuid.UUID
	ButtonID uuid.UUID
	Action   Action
}

// Kind returns the kind of the bound action.
func (f Functionality) Kind() Kind {
	if f.Action == nil {
		return ""
	}
	return f.Action.Kind()
}

// Target returns the switch target of a page_switch functionality.
func (f Functionality) Target() (uuid.UUID, bool) {
	if p, ok := f.Action.(PageSwitch); ok {
		return p.TargetBoardID, true
	}
	return uuid.Nil, false
}

// FieldMode controls how fields that belong to another kind are treated.
type FieldMode int

const (
	// StrictFields rejects foreign fields with ExtraneousField.
	StrictFields FieldMode = iota
	// RelaxedFields drops foreign fields silently.
	RelaxedFields
)

// ParseFieldMode accepts "strict" or "relaxed".
func ParseFieldMode(s string) (FieldMode, error) {
	switch s {
	case "strict":
		return StrictFields, nil
	case "relaxed":
		return RelaxedFields, nil
	}
	return StrictFields, fmt.Errorf("unknown field mode %q", s)
}

// FunctionalitySpec is the flat record form of an action, as found on the wire
// and in storage. Only the field belonging to Kind may be set.
type FunctionalitySpec struct {
	Kind          Kind       `json:"kind"`
	AppName       *string    `json:"app_name,omitempty"`
	ScriptPath    *string    `json:"script_path,omitempty"`
	TargetBoardID *uuid.UUID `json:"target_board_id,omitempty"`
}

func (s FunctionalitySpec) populated() map[string]bool {
	return map[string]bool{
		"app_name":        s.AppName != nil && *s.AppName != "",
		"script_path":     s.ScriptPath != nil && *s.ScriptPath != "",
		"target_board_id": s.TargetBoardID != nil && *s.TargetBoardID != uuid.Nil,
	}
}

var kindField = map[Kind]string{
	KindAppSwitch:  "app_name",
	KindRunScript:  "script_path",
	KindPageSwitch: "target_board_id",
}

// DecodeAction turns a flat record into an Action, enforcing the per-kind
// field rules.
func DecodeAction(spec FunctionalitySpec, mode FieldMode) (Action, error) {
	kind, err := ParseKind(string(spec.Kind))
	if err != nil {
		return nil, err
	}

	own := kindField[kind]
	if mode == StrictFields {
		// Stable order so the reported field does not depend on map iteration.
		for _, field := range []string{"app_name", "script_path", "target_board_id"} {
			if field != own && spec.populated()[field] {
				return nil, &Error{
					Code:   CodeExtraneousField,
					Entity: EntityFunctionality,
					Field:  field,
					Msg:    fmt.Sprintf("field not allowed for kind %s", kind),
				}
			}
		}
	}

	var a Action
	switch kind {
	case KindAppSwitch:
		a = AppSwitch{AppName: deref(spec.AppName)}
	case KindRunScript:
		a = RunScript{ScriptPath: deref(spec.ScriptPath)}
	case KindPageSwitch:
		var target uuid.UUID
		if spec.TargetBoardID != nil {
			target = *spec.TargetBoardID
		}
		a = PageSwitch{TargetBoardID: target}
	}
	if err := a.validate(); err != nil {
		return nil, err
	}
	return a, nil
}

// EncodeAction is the inverse of DecodeAction.
func EncodeAction(a Action) FunctionalitySpec {
	switch v := a.(type) {
	case AppSwitch:
		name := v.AppName
		return FunctionalitySpec{Kind: KindAppSwitch, AppName: &name}
	case RunScript:
		path := v.ScriptPath
		return FunctionalitySpec{Kind: KindRunScript, ScriptPath: &path}
	case PageSwitch:
		target := v.TargetBoardID
		return FunctionalitySpec{Kind: KindPageSwitch, TargetBoardID: &target}
	}
	return FunctionalitySpec{}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

type functionalityRecord struct {
	ID       uuid.UUID `json:"id"`
	ButtonID uuid.UUID `json:"button_id"`
	FunctionalitySpec
}

// MarshalJSON writes the flat record form.
func (f Functionality) MarshalJSON() ([]byte, error) {
	return json.Marshal(functionalityRecord{
		ID:                f.ID,
		ButtonID:          f.ButtonID,
		FunctionalitySpec: EncodeAction(f.Action),
	})
}

// UnmarshalJSON reads the flat record form with strict field rules.
func (f *Functionality) UnmarshalJSON(data []byte) error {
	var rec functionalityRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return err
	}
	a, err := DecodeAction(rec.FunctionalitySpec, StrictFields)
	if err != nil {
		return err
	}
	*f = Functionality{ID: rec.ID, ButtonID: rec.ButtonID, Action: a}
	return nil
}
