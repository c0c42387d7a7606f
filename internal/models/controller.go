package models

// BeforeAction represents a before_action or skip_before_action declaration.
// Only and Except restrict which controller actions the declaration applies
// to; nil means unrestricted.
type BeforeAction struct {
	FilterName string   // name of the filter method
	Only       []string // inclusive action list, nil when absent
	Except     []string // exclusive action list, nil when absent
}

// AppliesTo reports whether the declaration is in effect for an action.
// An Only list applies exclusively to the listed actions; an Except list to
// everything else; with neither, the declaration applies to all actions.
func (b BeforeAction) AppliesTo(action string) bool {
	if b.Only != nil {
		for _, a := range b.Only {
			if a == action {
				return true
			}
		}
		return false
	}
	if b.Except != nil {
		for _, a := range b.Except {
			if a == action {
				return false
			}
		}
	}
	return true
}

// ControllerInfo is the parsed view of one controller file, including
// filters inherited from its superclass chain. Cached per controller name
// for the duration of one scan.
type ControllerInfo struct {
	Name              string                 // controller identifier, e.g. api/v1/users
	ClassName         string                 // declared class name
	ParentClass       string                 // declared superclass, empty when none
	BeforeActions     []BeforeAction         // ordered; inherited filters come first
	SkipBeforeActions []BeforeAction         // skip declarations, child's override parent's
	StrongParams      map[string][]Parameter // params-method name -> permitted parameters
	ParamsOrder       []string               // params-method names in discovery order
}

// NewControllerInfo returns an empty info record for a controller name
func NewControllerInfo(name string) *ControllerInfo {
	return &ControllerInfo{
		Name:         name,
		StrongParams: make(map[string][]Parameter),
	}
}
