package imap

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// NumSet is a set of numbers identifying messages, either by sequence
// number (SeqSet) or by UID (UIDSet). Command builders accept a NumSet
// wherever the wire encoding calls for a "Sequence(string)" attribute.
type NumSet interface {
	// String returns the IMAP sequence-set representation, e.g. "1:*,3,5:7".
	String() string
	// Dynamic reports whether the set contains a "*" or "n:*" range.
	Dynamic() bool
}

var (
	_ NumSet = SeqSet(nil)
	_ NumSet = UIDSet(nil)
)

// SeqRange is an inclusive range of sequence numbers. Stop == 0 means
// the range is open-ended ("n:*").
type SeqRange struct {
	Start, Stop uint32
}

// SeqSet is an ordered list of sequence-number ranges.
type SeqSet []SeqRange

// SeqSetNum builds a SeqSet containing exactly the given numbers.
func SeqSetNum(nums ...uint32) SeqSet {
	var s SeqSet
	s.AddNum(nums...)
	return s
}

// AddNum adds each of nums to the set as a single-element range. A
// value of 0 stands for "*".
func (s *SeqSet) AddNum(nums ...uint32) {
	for _, n := range nums {
		*s = append(*s, SeqRange{Start: n, Stop: n})
	}
}

// AddRange adds the inclusive range [start, stop] to the set. A stop of
// 0 marks the range open-ended ("*").
func (s *SeqSet) AddRange(start, stop uint32) {
	*s = append(*s, SeqRange{Start: start, Stop: stop})
}

// AddSet appends other's ranges to s.
func (s *SeqSet) AddSet(other SeqSet) {
	*s = append(*s, other...)
}

// String implements NumSet.
func (s SeqSet) String() string {
	parts := make([]string, 0, len(s))
	for _, r := range s {
		parts = append(parts, formatRange(r.Start, r.Stop))
	}
	return strings.Join(parts, ",")
}

// Dynamic implements NumSet.
func (s SeqSet) Dynamic() bool {
	for _, r := range s {
		if r.Start == 0 || r.Stop == 0 {
			return true
		}
	}
	return false
}

// Contains reports whether seqNum falls within one of the set's ranges.
func (s SeqSet) Contains(seqNum uint32) bool {
	for _, r := range s {
		if inRange(seqNum, r.Start, r.Stop) {
			return true
		}
	}
	return false
}

// Nums expands the set into a sorted, deduplicated slice of sequence
// numbers. ok is false if the set is dynamic (contains "*") and so
// cannot be expanded without knowing the mailbox size.
func (s SeqSet) Nums() (nums []uint32, ok bool) {
	if s.Dynamic() {
		return nil, false
	}
	seen := make(map[uint32]struct{})
	for _, r := range s {
		for n := r.Start; n <= r.Stop; n++ {
			seen[n] = struct{}{}
		}
	}
	return sortedUint32s(seen), true
}

// UIDRange is an inclusive range of UIDs. Stop == 0 means the range is
// open-ended ("n:*").
type UIDRange struct {
	Start, Stop UID
}

// UIDSet is an ordered list of UID ranges.
type UIDSet []UIDRange

// UIDSetNum builds a UIDSet containing exactly the given UIDs.
func UIDSetNum(uids ...UID) UIDSet {
	var s UIDSet
	s.AddNum(uids...)
	return s
}

// AddNum adds each of uids to the set as a single-element range. A
// value of 0 stands for "*".
func (s *UIDSet) AddNum(uids ...UID) {
	for _, u := range uids {
		*s = append(*s, UIDRange{Start: u, Stop: u})
	}
}

// AddRange adds the inclusive range [start, stop] to the set. A stop of
// 0 marks the range open-ended ("*").
func (s *UIDSet) AddRange(start, stop UID) {
	*s = append(*s, UIDRange{Start: start, Stop: stop})
}

// AddSet appends other's ranges to s.
func (s *UIDSet) AddSet(other UIDSet) {
	*s = append(*s, other...)
}

// String implements NumSet.
func (s UIDSet) String() string {
	parts := make([]string, 0, len(s))
	for _, r := range s {
		parts = append(parts, formatRange(uint32(r.Start), uint32(r.Stop)))
	}
	return strings.Join(parts, ",")
}

// Dynamic implements NumSet.
func (s UIDSet) Dynamic() bool {
	for _, r := range s {
		if r.Start == 0 || r.Stop == 0 {
			return true
		}
	}
	return false
}

// Contains reports whether uid falls within one of the set's ranges.
func (s UIDSet) Contains(uid UID) bool {
	for _, r := range s {
		if inRange(uint32(uid), uint32(r.Start), uint32(r.Stop)) {
			return true
		}
	}
	return false
}

// Nums expands the set into a sorted, deduplicated slice of UIDs. ok is
// false if the set is dynamic (contains "*").
func (s UIDSet) Nums() (uids []UID, ok bool) {
	if s.Dynamic() {
		return nil, false
	}
	seen := make(map[uint32]struct{})
	for _, r := range s {
		for u := uint32(r.Start); u <= uint32(r.Stop); u++ {
			seen[u] = struct{}{}
		}
	}
	nums := sortedUint32s(seen)
	uids = make([]UID, len(nums))
	for i, n := range nums {
		uids[i] = UID(n)
	}
	return uids, true
}

func sortedUint32s(set map[uint32]struct{}) []uint32 {
	out := make([]uint32, 0, len(set))
	for n := range set {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// parseUIDSetText parses IMAP sequence-set syntax ("1:5,9,20:*") into a
// UIDSet, used to decode the COPYUID/APPENDUID response codes. Malformed
// segments are skipped rather than erroring, matching the tolerant
// decoding response parsers use throughout this package.
func parseUIDSetText(s string) UIDSet {
	var set UIDSet
	for _, part := range strings.Split(s, ",") {
		if part == "" {
			continue
		}
		if idx := strings.IndexByte(part, ':'); idx >= 0 {
			start, err1 := strconv.ParseUint(part[:idx], 10, 32)
			stopText := part[idx+1:]
			if stopText == "*" {
				if err1 == nil {
					set.AddRange(UID(start), 0)
				}
				continue
			}
			stop, err2 := strconv.ParseUint(stopText, 10, 32)
			if err1 == nil && err2 == nil {
				set.AddRange(UID(start), UID(stop))
			}
			continue
		}
		if n, err := strconv.ParseUint(part, 10, 32); err == nil {
			set.AddNum(UID(n))
		}
	}
	return set
}

func inRange(n, start, stop uint32) bool {
	if stop == 0 {
		return n >= start
	}
	return n >= start && n <= stop
}

// formatRange renders a single [start, stop] range as IMAP sequence-set
// syntax: "n" for a singleton ("*" when it is 0), "n:*" for an open
// range, "n:m" otherwise.
func formatRange(start, stop uint32) string {
	if stop == start {
		if start == 0 {
			return "*"
		}
		return strconv.FormatUint(uint64(start), 10)
	}
	stopStr := "*"
	if stop != 0 {
		stopStr = strconv.FormatUint(uint64(stop), 10)
	}
	return fmt.Sprintf("%d:%s", start, stopStr)
}
