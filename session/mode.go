package session

// ChatMode is the conversational mode of a chat session. Ask suppresses
// change handling entirely; the other three map onto the execution
// policy applied to parsed change sets.
type ChatMode int

const (
	ModeAsk ChatMode = iota
	ModePlan
	ModeCode
	ModeAuto
)

func (m ChatMode) String() string {
	switch m {
	case ModeAsk:
		return "ASK"
	case ModePlan:
		return "PLAN"
	case ModeCode:
		return "CODE"
	case ModeAuto:
		return "AUTO"
	default:
		return "UNKNOWN"
	}
}

// Cycle advances to the next mode in the fixed order
// Ask -> Plan -> Code -> Auto -> Ask.
func (m ChatMode) Cycle() ChatMode {
	switch m {
	case ModeAsk:
		return ModePlan
	case ModePlan:
		return ModeCode
	case ModeCode:
		return ModeAuto
	default:
		return ModeAsk
	}
}

// ParseChatMode maps a mode name (as typed in a /command) to a ChatMode.
func ParseChatMode(name string) (ChatMode, bool) {
	switch name {
	case "ask":
		return ModeAsk, true
	case "plan":
		return ModePlan, true
	case "code":
		return ModeCode, true
	case "auto":
		return ModeAuto, true
	default:
		return ModeAsk, false
	}
}

// ExecutionMode is the confirmation policy for applying a ChangeSet in a
// one-shot invocation: show only, confirm each item, or apply all.
type ExecutionMode int

const (
	ExecutionPlan ExecutionMode = iota
	ExecutionInteractive
	ExecutionAuto
)

func (m ExecutionMode) String() string {
	switch m {
	case ExecutionPlan:
		return "plan"
	case ExecutionInteractive:
		return "interactive"
	case ExecutionAuto:
		return "auto"
	default:
		return "unknown"
	}
}

// ExecutionModeFor maps a chat mode to the execution policy it implies.
// Ask has no policy; callers must filter it out before applying changes.
func ExecutionModeFor(mode ChatMode) ExecutionMode {
	switch mode {
	case ModePlan:
		return ExecutionPlan
	case ModeAuto:
		return ExecutionAuto
	default:
		return ExecutionInteractive
	}
}
