package escher

import "fmt"

// Record ids of the Office Drawing records found in spreadsheet drawings.
const (
	// ── Containers ────────────────────────────────────────────────────────────
	DggContainer    uint16 = 0xF000
	BStoreContainer uint16 = 0xF001
	DgContainer     uint16 = 0xF002
	SpgrContainer   uint16 = 0xF003
	SpContainer     uint16 = 0xF004
	SolverContainer uint16 = 0xF005

	// ── Atoms ─────────────────────────────────────────────────────────────────
	Dgg              uint16 = 0xF006
	BSE              uint16 = 0xF007
	Dg               uint16 = 0xF008
	Spgr             uint16 = 0xF009
	Sp               uint16 = 0xF00A
	Opt              uint16 = 0xF00B
	Textbox          uint16 = 0xF00C
	ClientTextbox    uint16 = 0xF00D
	Anchor           uint16 = 0xF00E
	ChildAnchor      uint16 = 0xF00F
	ClientAnchor     uint16 = 0xF010
	ClientData       uint16 = 0xF011
	ConnectorRule    uint16 = 0xF012
	AlignRule        uint16 = 0xF013
	ArcRule          uint16 = 0xF014
	ClientRule       uint16 = 0xF015
	CLSID            uint16 = 0xF016
	CalloutRule      uint16 = 0xF017
	BlipFirst        uint16 = 0xF018
	BlipLast         uint16 = 0xF117
	Regroup          uint16 = 0xF118
	Selection        uint16 = 0xF119
	ColorMRU         uint16 = 0xF11A
	DeletedPspl      uint16 = 0xF11D
	SplitMenuColors  uint16 = 0xF11E
	OleObject        uint16 = 0xF11F
	ColorScheme      uint16 = 0xF120
	SecondaryOpt     uint16 = 0xF121
	TertiaryOpt      uint16 = 0xF122
)

// ContainerVersion is the version nibble that marks a record as a container
// regardless of its id.
const ContainerVersion uint8 = 0xF

// IsContainerID reports whether id is one of the fixed container record ids.
func IsContainerID(id uint16) bool {
	return id >= DggContainer && id <= SolverContainer
}

var recordNames = map[uint16]string{
	DggContainer:    "DggContainer",
	BStoreContainer: "BStoreContainer",
	DgContainer:     "DgContainer",
	SpgrContainer:   "SpgrContainer",
	SpContainer:     "SpContainer",
	SolverContainer: "SolverContainer",
	Dgg:             "Dgg",
	BSE:             "BSE",
	Dg:              "Dg",
	Spgr:            "Spgr",
	Sp:              "Sp",
	Opt:             "Opt",
	Textbox:         "Textbox",
	ClientTextbox:   "ClientTextbox",
	Anchor:          "Anchor",
	ChildAnchor:     "ChildAnchor",
	ClientAnchor:    "ClientAnchor",
	ClientData:      "ClientData",
	ConnectorRule:   "ConnectorRule",
	AlignRule:       "AlignRule",
	ArcRule:         "ArcRule",
	ClientRule:      "ClientRule",
	CLSID:           "CLSID",
	CalloutRule:     "CalloutRule",
	Regroup:         "Regroup",
	Selection:       "Selection",
	ColorMRU:        "ColorMRU",
	DeletedPspl:     "DeletedPspl",
	SplitMenuColors: "SplitMenuColors",
	OleObject:       "OleObject",
	ColorScheme:     "ColorScheme",
	SecondaryOpt:    "SecondaryOpt",
	TertiaryOpt:     "TertiaryOpt",
}

// RecordName returns a human-readable name for a record id.
func RecordName(id uint16) string {
	if name, ok := recordNames[id]; ok {
		return name
	}
	if id >= BlipFirst && id <= BlipLast {
		return fmt.Sprintf("Blip(0x%04X)", id)
	}
	return fmt.Sprintf("Unknown(0x%04X)", id)
}
