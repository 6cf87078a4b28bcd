package record

// Start creates a module start marker
func Start(chain int, module string, kind ModuleKind) *Record {
	return &Record{Kind: KindModuleStart, Chain: chain, Module: module, ModuleKind: kind}
}

// StartIn creates a module start marker with a declared parent module
func StartIn(chain int, module, parent string, kind ModuleKind) *Record {
	ret := Start(chain, module, kind)
	ret.Parent = parent
	return ret
}

// End creates a module end marker
func End(chain int, module string) *Record {
	return &Record{Kind: KindModuleEnd, Chain: chain, Module: module}
}

// Motor creates a motor move record
func Motor(chain int, name string, pos int64, value float64, unit string) *Record {
	return &Record{Kind: KindMotor, Chain: chain, Name: name, PosCount: Int64(pos), Value: Float64(value), Unit: unit}
}

// Detector creates a non-deferred detector read
func Detector(chain int, name string, pos int64, value float64, unit string) *Record {
	return &Record{Kind: KindDetector, Chain: chain, Name: name, PosCount: Int64(pos), Value: Float64(value), Unit: unit}
}

// Deferred creates a deferred detector read; deferred reads carry no position count of their own
func Deferred(chain int, name string, value float64, unit string) *Record {
	return &Record{Kind: KindDetector, Chain: chain, Name: name, Deferred: true, Value: Float64(value), Unit: unit}
}

// Positioning creates a positioning record; pos <= 0 leaves the count to the reconciler
func Positioning(chain int, name string, pos int64, value float64, unit string) *Record {
	ret := &Record{Kind: KindPositioning, Chain: chain, Name: name, Value: Float64(value), Unit: unit}
	if pos > 0 {
		ret.PosCount = Int64(pos)
	}
	return ret
}

// Snapshot creates a snapshot record of a device with the given role
func Snapshot(chain int, name string, role Role, pos int64, value float64, unit string) *Record {
	return &Record{Kind: KindSnapshot, Chain: chain, Name: name, Role: role, PosCount: Int64(pos), Value: Float64(value), Unit: unit}
}

// Monitor creates a monitor update at elapsed milliseconds
func Monitor(chain int, name string, elapsedMs int64, value float64, unit string) *Record {
	return &Record{Kind: KindMonitor, Chain: chain, Name: name, ElapsedMs: Int64(elapsedMs), Value: Float64(value), Unit: unit}
}

// Timestamp creates a position count timer entry
func Timestamp(chain int, pos int64, elapsedMs int64) *Record {
	return &Record{Kind: KindTimestamp, Chain: chain, PosCount: Int64(pos), ElapsedMs: Int64(elapsedMs)}
}
