package record

// Kind identifies the type of a raw record emitted by the scan engine
type Kind string

const (
	KindMotor       Kind = "motor"       // motor move, axis value
	KindDetector    Kind = "detector"    // detector read, channel value
	KindSnapshot    Kind = "snapshot"    // device value captured by a snapshot
	KindMonitor     Kind = "monitor"     // asynchronous value-on-change
	KindModuleStart Kind = "moduleStart" // scan module boundary
	KindModuleEnd   Kind = "moduleEnd"   // scan module boundary
	KindPositioning Kind = "positioning" // positioning step, owns its position count
	KindTimestamp   Kind = "timestamp"   // position count to elapsed time mapping
)

// ModuleKind identifies the type of the scan module a record belongs to
type ModuleKind string

const (
	ModuleNone        ModuleKind = ""
	ModuleScan        ModuleKind = "scan"
	ModuleSnapshot    ModuleKind = "snapshot"
	ModulePositioning ModuleKind = "positioning"
)

// Advances reports whether records of the module kind move the scan grid
func (k ModuleKind) Advances() bool {
	return k == ModuleScan || k == ModulePositioning
}

// Role distinguishes independent (axis) from dependent (channel) devices
type Role string

const (
	RoleAxis    Role = "axis"
	RoleChannel Role = "channel"
)

// Record represents a single raw event of a chain, as extracted by an importer
type Record struct {
	Kind       Kind       `json:"kind" yaml:"kind"`
	Chain      int        `json:"chain" yaml:"chain"`
	Module     string     `json:"module,omitempty" yaml:"module,omitempty"`         // module id, set on boundary markers
	Parent     string     `json:"parent,omitempty" yaml:"parent,omitempty"`         // declared parent module id of a moduleStart
	ModuleKind ModuleKind `json:"moduleKind,omitempty" yaml:"moduleKind,omitempty"` // set on moduleStart
	Name       string     `json:"name,omitempty" yaml:"name,omitempty"`             // device name
	PosCount   *int64     `json:"posCount,omitempty" yaml:"posCount,omitempty"`
	ElapsedMs  *int64     `json:"elapsedMs,omitempty" yaml:"elapsedMs,omitempty"` // milliseconds since scan start
	Deferred   bool       `json:"deferred,omitempty" yaml:"deferred,omitempty"`
	Value      *float64   `json:"value,omitempty" yaml:"value,omitempty"`
	Unit       string     `json:"unit,omitempty" yaml:"unit,omitempty"`
	Role       Role       `json:"role,omitempty" yaml:"role,omitempty"`
}

// HasPayload reports whether the record carries a data value
func (r *Record) HasPayload() bool {
	return r.Value != nil
}

// IsTimestamp reports whether the record is an elapsed-time entry without data
func (r *Record) IsTimestamp() bool {
	return r.ElapsedMs != nil && r.Value == nil
}

// IsBoundary reports whether the record is a module start or end marker
func (r *Record) IsBoundary() bool {
	return r.Kind == KindModuleStart || r.Kind == KindModuleEnd
}

// DeviceRole returns the role of the recorded device
func (r *Record) DeviceRole() Role {
	if r.Role != "" {
		return r.Role
	}
	switch r.Kind {
	case KindMotor, KindPositioning:
		return RoleAxis
	}
	return RoleChannel
}

// Int64 returns a pointer to v, for building records
func Int64(v int64) *int64 {
	return &v
}

// Float64 returns a pointer to v, for building records
func Float64(v float64) *float64 {
	return &v
}
