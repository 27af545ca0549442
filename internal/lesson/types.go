// internal/lesson/types.go
package lesson

// EventType identifies the kind of event a trigger listens for.
type EventType string

const (
	EventClick          EventType = "click"
	EventDoubleClick    EventType = "dblclick"
	EventHover          EventType = "hover"
	EventKeyPress       EventType = "keypress"
	EventMouseDown      EventType = "mousedown"
	EventMouseUp        EventType = "mouseup"
	EventMediaProgress  EventType = "media-progress"
	EventMediaComplete  EventType = "media-complete"
	EventVariableChange EventType = "variable-change"
	EventStateEnter     EventType = "state-enter"
	EventStateExit      EventType = "state-exit"
	EventSlideEnter     EventType = "slide-enter"
	EventSlideExit      EventType = "slide-exit"
	EventTimer          EventType = "timer"
	EventCustom         EventType = "custom"
)

// SourceSelf is the sentinel source_object_id that resolves to the
// trigger's own scope object at dispatch time.
const SourceSelf = "self"

// CompareOp is a comparison operator used by variable events and conditions.
type CompareOp string

const (
	OpEquals    CompareOp = "equals"
	OpNotEquals CompareOp = "not-equals"
	OpGT        CompareOp = "gt"
	OpGTE       CompareOp = "gte"
	OpLT        CompareOp = "lt"
	OpLTE       CompareOp = "lte"
	OpContains  CompareOp = "contains"
	OpChanged   CompareOp = "changed"
)

// Event describes which event fires a trigger plus its kind-specific
// matching configuration. Fields outside the matching kind are ignored.
type Event struct {
	Type           EventType `yaml:"type"`
	SourceObjectID string    `yaml:"source_object_id"`

	// keypress
	Key      string   `yaml:"key"`
	Keys     []string `yaml:"keys"`
	KeyCombo string   `yaml:"key_combo"` // e.g. "ctrl+shift+k", exact modifier match

	// mousedown / mouseup
	Button string `yaml:"button"` // left | middle | right
	Ctrl   *bool  `yaml:"ctrl"`
	Shift  *bool  `yaml:"shift"`
	Alt    *bool  `yaml:"alt"`
	Meta   *bool  `yaml:"meta"`

	// media-progress
	AtTimeMs    *float64 `yaml:"at_time_ms"`
	ToleranceMs float64  `yaml:"tolerance_ms"` // default 100
	AtProgress  *float64 `yaml:"at_progress"`  // matched within ±0.01

	// variable-change
	Variable string    `yaml:"variable"`
	Operator CompareOp `yaml:"operator"`
	Value    any       `yaml:"value"`
}

// ConditionKind identifies a condition predicate.
type ConditionKind string

const (
	ConditionVariable      ConditionKind = "variable"
	ConditionObjectVisible ConditionKind = "object-visible"
	ConditionObjectHidden  ConditionKind = "object-hidden"
	ConditionObjectState   ConditionKind = "object-state"
	ConditionExpression    ConditionKind = "expression"
)

// Condition is a pure, synchronous predicate attached to a trigger.
// Negate flips the raw result after evaluation.
type Condition struct {
	Kind   ConditionKind `yaml:"kind"`
	Negate bool          `yaml:"negate"`

	Variable string    `yaml:"variable"`
	Operator CompareOp `yaml:"operator"`
	Value    any       `yaml:"value"`

	ObjectID string `yaml:"object_id"`
	StateID  string `yaml:"state_id"`

	Expression string `yaml:"expression"`
}

// ActionKind identifies an executor operation.
type ActionKind string

const (
	ActionShow             ActionKind = "show"
	ActionHide             ActionKind = "hide"
	ActionToggleVisibility ActionKind = "toggle-visibility"
	ActionFadeIn           ActionKind = "fade-in"
	ActionFadeOut          ActionKind = "fade-out"

	ActionGoToState  ActionKind = "go-to-state"
	ActionResetState ActionKind = "reset-state"

	ActionAnimate ActionKind = "animate"

	ActionGoToSlide     ActionKind = "go-to-slide"
	ActionNextSlide     ActionKind = "next-slide"
	ActionPreviousSlide ActionKind = "previous-slide"
	ActionShowLayer     ActionKind = "show-layer"
	ActionHideLayer     ActionKind = "hide-layer"

	ActionPlayMedia  ActionKind = "play-media"
	ActionPauseMedia ActionKind = "pause-media"
	ActionSeekMedia  ActionKind = "seek-media"

	ActionPlayTimeline  ActionKind = "play-timeline"
	ActionPauseTimeline ActionKind = "pause-timeline"
	ActionSeekTimeline  ActionKind = "seek-timeline"

	ActionSetVariable       ActionKind = "set-variable"
	ActionIncrementVariable ActionKind = "increment-variable"
	ActionDecrementVariable ActionKind = "decrement-variable"
	ActionToggleVariable    ActionKind = "toggle-variable"
	ActionResetVariable     ActionKind = "reset-variable"

	ActionPlayAudio    ActionKind = "play-audio"
	ActionStopAudio    ActionKind = "stop-audio"
	ActionStopAllAudio ActionKind = "stop-all-audio"

	ActionEmitStatement ActionKind = "emit-statement"
	ActionOpenURL       ActionKind = "open-url"
	ActionExecuteScript ActionKind = "execute-script"

	ActionIfElse        ActionKind = "if-else"
	ActionLoop          ActionKind = "loop"
	ActionDelay         ActionKind = "delay"
	ActionDispatchEvent ActionKind = "dispatch-event"
)

// ErrorPolicy governs what happens when an action fails.
type ErrorPolicy string

const (
	ErrorFail   ErrorPolicy = "fail" // default: propagate, abort remaining actions
	ErrorIgnore ErrorPolicy = "ignore"
	ErrorRetry  ErrorPolicy = "retry"
)

// Animation describes an animation delegated to the host.
type Animation struct {
	Name       string `yaml:"name"`
	DurationMs int    `yaml:"duration_ms"`
	Easing     string `yaml:"easing"`
}

// Statement is an xAPI statement emitted fire-and-forget through the host.
type Statement struct {
	Verb   string         `yaml:"verb"`
	Object string         `yaml:"object"`
	Result map[string]any `yaml:"result"`
}

// Action is one node in a trigger's action tree. Control-flow kinds
// (if-else, loop) carry nested action lists, so the structure is a tree
// rather than a flat array. Fields outside the action's kind are ignored.
type Action struct {
	ID         string      `yaml:"id"`
	Kind       ActionKind  `yaml:"kind"`
	DelayMs    int         `yaml:"delay_ms"`
	OnError    ErrorPolicy `yaml:"on_error"`
	MaxRetries int         `yaml:"max_retries"`

	// visibility / state / animate / media targets ("self" allowed)
	ObjectID  string     `yaml:"object_id"`
	StateID   string     `yaml:"state_id"`
	Animation *Animation `yaml:"animation"`

	// navigation
	SlideID    string `yaml:"slide_id"`
	SlideIndex *int   `yaml:"slide_index"`
	LayerID    string `yaml:"layer_id"`

	// media / timeline
	SeekMs     *float64 `yaml:"seek_ms"`
	Play       bool     `yaml:"play"` // with seek-media: seek completes before play starts
	TimelineID string   `yaml:"timeline_id"`

	// variable ops
	Variable string   `yaml:"variable"`
	Value    any      `yaml:"value"`
	Delta    *float64 `yaml:"delta"` // increment/decrement step, default 1

	// audio
	SoundID string `yaml:"sound_id"`

	Statement *Statement `yaml:"statement"`

	URL    string `yaml:"url"`
	Target string `yaml:"target"` // default "_blank"

	// execute-script
	Script string `yaml:"script"`

	// if-else
	Condition *Condition `yaml:"condition"`
	Then      []Action   `yaml:"then"`
	Else      []Action   `yaml:"else"`

	// loop
	LoopCount    int      `yaml:"loop_count"`
	LoopVariable string   `yaml:"loop_variable"`
	Actions      []Action `yaml:"actions"`

	// delay
	DurationMs int `yaml:"duration_ms"`

	// dispatch-event
	EventName string         `yaml:"event_name"`
	Payload   map[string]any `yaml:"payload"`
}

// Settings holds trigger-level execution controls.
type Settings struct {
	Priority        int    `yaml:"priority"`
	DebounceMs      int    `yaml:"debounce_ms"`
	ThrottleMs      int    `yaml:"throttle_ms"`
	CooldownMs      int    `yaml:"cooldown_ms"`
	ExecuteOnce     bool   `yaml:"execute_once"`
	ExecuteCount    int    `yaml:"execute_count"` // 0 = unlimited
	DelayMs         int    `yaml:"delay_ms"`
	StopPropagation bool   `yaml:"stop_propagation"`
	PreventDefault  bool   `yaml:"prevent_default"`
	ContinueOnError bool   `yaml:"continue_on_error"`
	Announce        string `yaml:"announce"` // screen-reader message, empty = none
}

// Trigger binds one event pattern plus conditions to an ordered action tree.
type Trigger struct {
	ID         string      `yaml:"id"`
	Name       string      `yaml:"name"`
	Enabled    *bool       `yaml:"enabled"` // nil = enabled
	Event      Event       `yaml:"event"`
	Conditions []Condition `yaml:"conditions"`
	Actions    []Action    `yaml:"actions"`
	Settings   Settings    `yaml:"settings"`
}

// IsEnabled reports whether the trigger participates in dispatch.
// Triggers are enabled unless explicitly disabled.
func (t *Trigger) IsEnabled() bool {
	return t.Enabled == nil || *t.Enabled
}

// VariableDef declares a lesson variable and its initial value.
type VariableDef struct {
	ID      string `yaml:"id"`
	Initial any    `yaml:"initial"`
}

// Object is an addressable element on a slide.
type Object struct {
	ID           string    `yaml:"id"`
	Name         string    `yaml:"name"`
	Hidden       bool      `yaml:"hidden"` // initial visibility
	InitialState string    `yaml:"initial_state"`
	Triggers     []Trigger `yaml:"triggers"`
}

// Slide groups objects and slide-scoped triggers.
type Slide struct {
	ID       string    `yaml:"id"`
	Title    string    `yaml:"title"`
	Objects  []Object  `yaml:"objects"`
	Triggers []Trigger `yaml:"triggers"`
}

// Lesson is a complete authored lesson document.
type Lesson struct {
	ID        string        `yaml:"id"`
	Title     string        `yaml:"title"`
	Variables []VariableDef `yaml:"variables"`
	Slides    []Slide       `yaml:"slides"`
	Triggers  []Trigger     `yaml:"triggers"` // global scope
}
