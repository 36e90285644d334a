package imap

// StoreOptions carries the STORE command's byUid and CONDSTORE
// UNCHANGEDSINCE toggles.
type StoreOptions struct {
	ByUID          bool
	UnchangedSince uint64
}

// StoreFlagsOp names the flag mutation STORE performs.
type StoreFlagsOp int

const (
	StoreFlagsSet StoreFlagsOp = iota
	StoreFlagsAdd
	StoreFlagsDel
)

// StoreFlags is the flag-mutation argument of BuildStore: which flags,
// which operation, and whether to suppress the resulting untagged FETCH
// (the ".SILENT" suffix).
type StoreFlags struct {
	Op     StoreFlagsOp
	Silent bool
	Flags  []Flag
}

// BuildStore compiles a STORE (or UID STORE) command request.
func BuildStore(seq NumSet, flags StoreFlags, opts StoreOptions) CommandRequest {
	name := "STORE"
	if opts.ByUID {
		name = "UID STORE"
	}

	action := "FLAGS"
	switch flags.Op {
	case StoreFlagsAdd:
		action = "+FLAGS"
	case StoreFlagsDel:
		action = "-FLAGS"
	}
	if flags.Silent {
		action += ".SILENT"
	}

	flagAttrs := make([]Attribute, len(flags.Flags))
	for i, f := range flags.Flags {
		flagAttrs[i] = AtomStr(string(f))
	}

	attrs := []Attribute{Sequence(seq.String())}
	if opts.UnchangedSince != 0 {
		attrs = append(attrs, List{AtomStr("UNCHANGEDSINCE"), Num(opts.UnchangedSince)})
	}
	attrs = append(attrs, AtomStr(action), List(flagAttrs))

	return CommandRequest{Name: name, Attrs: attrs}
}
