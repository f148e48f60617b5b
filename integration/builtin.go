package integration

import (
	"github.com/jonwraymond/callspan/ambient"
	"github.com/jonwraymond/callspan/callback"
	"github.com/jonwraymond/callspan/describe"
	"github.com/jonwraymond/callspan/observe"
	"github.com/jonwraymond/callspan/span"
)

// Built-in definition names.
const (
	ButtonClick        = "ui.button.click"
	FormsButtonClick   = "ui.forms.button.click"
	DispatcherCallback = "ui.dispatcher.operation"
	MediaLoaded        = "ui.media.loaded"
	QueryForObject     = "sqlmap.query_for_object"
)

// Built-in groups.
const (
	GroupPresentation = "presentation"
	GroupForms        = "forms"
	GroupSQLMap       = "sqlmap"
)

// Tag keys set by the built-in hooks.
const (
	TagComponentName   = "component.name"
	TagComponentAction = "component.action"
	TagComponentType   = "component.type"
	TagQueryStatement  = "query.statement"
)

// Deps are the collaborators the built-in definitions share.
type Deps struct {
	Source    span.Source
	Slot      *ambient.Slot
	Wrapper   *callback.Wrapper
	Describer *describe.Describer
	Guard     *observe.Guard
}

// NewEntry returns a root hook: the span starts a new trace and the caller's
// ambient context is restored afterwards.
func NewEntry(deps Deps, name string, tagger Tagger) *SpanHook {
	return &SpanHook{
		Source: deps.Source,
		Slot:   deps.Slot,
		Guard:  deps.Guard,
		Name:   name,
		Kind:   span.KindInternal,
		Root:   true,
		Tagger: tagger,
	}
}

// NewCall returns a hook whose span is a child of the ambient span.
func NewCall(deps Deps, name string, tagger Tagger) *SpanHook {
	return &SpanHook{
		Source: deps.Source,
		Slot:   deps.Slot,
		Guard:  deps.Guard,
		Name:   name,
		Kind:   span.KindInternal,
		Tagger: tagger,
	}
}

// ButtonTagger tags a button click with the control's name.
func ButtonTagger(d *describe.Describer) Tagger {
	if d == nil {
		d = describe.Default
	}
	return func(instance any, _ []any) map[string]string {
		return map[string]string{
			TagComponentName:   d.Name(instance),
			TagComponentAction: "click",
			TagComponentType:   "button",
		}
	}
}

// StatementTagger tags a query with its statement name, the first argument.
func StatementTagger(_ any, args []any) map[string]string {
	statement := ""
	if len(args) > 0 {
		statement, _ = args[0].(string)
	}
	return map[string]string{TagQueryStatement: statement}
}

const (
	uiMinVersion = "4.0.0"
	uiMaxVersion = "6.65535.65535"
)

// Builtins returns the built-in definitions wired to deps.
func Builtins(deps Deps) []Definition {
	presentationButton := Target{
		Module:     "PresentationFramework",
		Type:       "System.Windows.Controls.Button",
		Method:     "OnClick",
		MinVersion: uiMinVersion,
		MaxVersion: uiMaxVersion,
	}
	formsButton := Target{
		Module:     "System.Windows.Forms",
		Type:       "System.Windows.Forms.Button",
		Method:     "OnClick",
		Params:     []string{"System.EventArgs"},
		MinVersion: uiMinVersion,
		MaxVersion: uiMaxVersion,
	}
	dispatcher := Target{
		Module: "WindowsBase",
		Type:   "System.Windows.Threading.DispatcherOperation",
		Method: ".ctor",
		Return: "System.Windows.Threading.DispatcherOperation",
		Params: []string{
			"System.Windows.Threading.Dispatcher",
			"System.Delegate",
			"System.Windows.Threading.DispatcherPriority",
			"System.Object",
			"System.Int32",
			"System.Windows.Threading.DispatcherOperationTaskSource",
			"System.Boolean",
		},
		MinVersion: uiMinVersion,
		MaxVersion: uiMaxVersion,
	}
	media := Target{
		Module:     "PresentationCore",
		Type:       "System.Windows.Media.MediaContext",
		Method:     "AddLoadedOrUnloadedCallback",
		Return:     "MS.Internal.LoadedOrUnloadedOperation",
		Params:     []string{"System.Windows.Threading.DispatcherOperationCallback", "System.Windows.DependencyObject"},
		MinVersion: uiMinVersion,
		MaxVersion: uiMaxVersion,
	}
	query := Target{
		Module:     "IBatisNet.DataMapper",
		Type:       "IBatisNet.DataMapper.SqlMapper",
		Method:     "QueryForObject",
		Return:     "System.Object",
		Params:     []string{"System.String", "System.Object"},
		MinVersion: "1.0.0",
		MaxVersion: "1.65535.65535",
	}

	wrap := CallbackInterceptor{Wrapper: deps.Wrapper}
	return []Definition{
		{
			Name:   ButtonClick,
			Group:  GroupPresentation,
			Target: presentationButton,
			Hook:   NewEntry(deps, presentationButton.Qualified(), ButtonTagger(deps.Describer)),
		},
		{
			Name:   FormsButtonClick,
			Group:  GroupForms,
			Target: formsButton,
			Hook:   NewEntry(deps, formsButton.Qualified(), ButtonTagger(deps.Describer)),
		},
		{Name: DispatcherCallback, Group: GroupPresentation, Target: dispatcher, Interceptor: wrap},
		{Name: MediaLoaded, Group: GroupPresentation, Target: media, Interceptor: wrap},
		{
			Name:   QueryForObject,
			Group:  GroupSQLMap,
			Target: query,
			Hook:   NewCall(deps, query.Qualified(), StatementTagger),
		},
	}
}

// NewBuiltinRegistry returns a registry holding Builtins(deps).
func NewBuiltinRegistry(deps Deps) (*Registry, error) {
	reg := NewRegistry()
	for _, def := range Builtins(deps) {
		if err := reg.Register(def); err != nil {
			return nil, err
		}
	}
	return reg, nil
}
