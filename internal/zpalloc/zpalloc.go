// Package zpalloc implements the zero-page allocator described in §6 as an
// external collaborator: a policy-driven, finite address pool that the IR
// emitter's allocation pass (component H) consults for every variable
// flagged @zp. It has no liveness analysis — the zero page here is a set of
// reserved byte ranges handed out on a first-come basis, not a
// register-scheduling problem, so the reference implementation is a simple
// bump allocator rather than the teacher's linear-scan register allocator
// it is grounded on.
package zpalloc

import (
	"fmt"

	"github.com/xyproto/c64c/internal/value"
)

// Policy selects which reserved ranges of the zero page a module is allowed
// to hand out addresses from, named for the four %zeropage directive values.
type Policy int

const (
	// BasicSafe avoids every address BASIC and its interpreter touch,
	// leaving the smallest usable range.
	BasicSafe Policy = iota
	// FloatSafe additionally avoids the floating-point work cells the
	// KERNAL's software FP routines use, so float code can share the page.
	FloatSafe
	// KernalSafe avoids only what the KERNAL's IRQ/IO routines need,
	// leaving BASIC's own scratch cells available.
	KernalSafe
	// Full claims the entire zero page from $02 to $ff, the caller's
	// responsibility to ensure nothing else depends on it.
	Full
)

func (p Policy) String() string {
	switch p {
	case BasicSafe:
		return "basicsafe"
	case FloatSafe:
		return "floatsafe"
	case KernalSafe:
		return "kernalsafe"
	case Full:
		return "full"
	default:
		return "unknown"
	}
}

// ParsePolicy maps a %zeropage directive argument to a Policy.
func ParsePolicy(name string) (Policy, bool) {
	switch name {
	case "basicsafe":
		return BasicSafe, true
	case "floatsafe":
		return FloatSafe, true
	case "kernalsafe":
		return KernalSafe, true
	case "full":
		return Full, true
	default:
		return 0, false
	}
}

// zone is one contiguous address range available to hand out.
type zone struct {
	lo, hi int // inclusive
}

// zonesFor returns the free ranges a policy makes available, in ascending
// address order. These are the C64 memory map's well-known safe windows; a real
// driver would let a target machine profile override them, but this core
// has exactly one target per §1.
func zonesFor(p Policy) []zone {
	switch p {
	case BasicSafe:
		return []zone{{0xfb, 0xfe}}
	case FloatSafe:
		return []zone{{0x02, 0x8f}, {0xfb, 0xfe}}
	case KernalSafe:
		return []zone{{0x02, 0x8f}, {0xa3, 0xb1}, {0xf7, 0xfe}}
	case Full:
		return []zone{{0x02, 0xff}}
	default:
		return nil
	}
}

// Depleted is the error returned when a policy's ranges have no run of
// contiguous free bytes wide enough to satisfy a request; the checker's
// caller converts it to a ZeropageDepletedError warning per §7.
type Depleted struct {
	Name string
	Size int
}

func (e *Depleted) Error() string {
	return fmt.Sprintf("zero page depleted: no %d contiguous free byte(s) for %q", e.Size, e.Name)
}

// Allocator is the interface component H's allocation pass consumes: one
// operation to claim an address for a variable, one to inspect what has
// already been claimed.
type Allocator interface {
	// Allocate reserves space for a variable of dataType and returns its
	// zero-page address. hint, when non-empty, names a preferred register
	// or address the caller would like honored if free (e.g. carrying a
	// loop counter into $fb); a Bump allocator ignores hints it cannot
	// satisfy exactly rather than failing on them.
	Allocate(name string, dataType value.DataType, hint string) (int, error)
	// Allocated returns every variable name currently holding a zero-page
	// address, mapped to that address — the "allocatedZeropageVariables"
	// query named in §5.
	Allocated() map[string]int
}

// sizeOf returns how many contiguous bytes dataType needs on the zero page.
// Arrays are never zero-page eligible (§6 scopes @zp to scalars); callers
// that reach sizeOf with an array type have already violated that
// invariant, so it reports 0 rather than guessing a size.
func sizeOf(t value.DataType) int {
	switch {
	case t.IsByte():
		return 1
	case t.IsWord():
		return 2
	case t.IsFloat():
		return 5 // C64 KERNAL five-byte MFLPT representation
	default:
		return 0
	}
}

// Bump is the reference Allocator: a first-fit bump allocator over a
// policy's free zones. It never reuses an address once handed out — the
// zero page has no register-style liveness reuse in this core (§6) — so
// allocation order matters only in that earlier callers get first pick of
// the lowest addresses.
type Bump struct {
	zones     []zone
	used      map[int]bool
	allocated map[string]int
}

// NewBump creates a Bump allocator over policy's free zones.
func NewBump(policy Policy) *Bump {
	return &Bump{
		zones:     zonesFor(policy),
		used:      make(map[int]bool),
		allocated: make(map[string]int),
	}
}

// Allocate finds the lowest address with sizeOf(dataType) contiguous free
// bytes within the policy's zones. hint is honored only when it names an
// address inside a free zone with enough room; otherwise it is ignored
// silently and Allocate falls back to first-fit, matching §6's "hint?" as
// an optional preference rather than a requirement.
func (b *Bump) Allocate(name string, dataType value.DataType, hint string) (int, error) {
	n := sizeOf(dataType)
	if n == 0 {
		return 0, fmt.Errorf("zpalloc: %q has no zero-page-eligible size (%s)", name, dataType)
	}
	if hintAddr, ok := parseHint(hint); ok && b.fits(hintAddr, n) {
		b.claim(name, hintAddr, n)
		return hintAddr, nil
	}
	for _, z := range b.zones {
		for addr := z.lo; addr+n-1 <= z.hi; addr++ {
			if b.fits(addr, n) {
				b.claim(name, addr, n)
				return addr, nil
			}
		}
	}
	return 0, &Depleted{Name: name, Size: n}
}

// Allocated returns every variable's claimed base address.
func (b *Bump) Allocated() map[string]int {
	out := make(map[string]int, len(b.allocated))
	for k, v := range b.allocated {
		out[k] = v
	}
	return out
}

func (b *Bump) fits(addr, n int) bool {
	for a := addr; a < addr+n; a++ {
		if b.used[a] {
			return false
		}
	}
	return b.inZone(addr, n)
}

func (b *Bump) inZone(addr, n int) bool {
	for _, z := range b.zones {
		if addr >= z.lo && addr+n-1 <= z.hi {
			return true
		}
	}
	return false
}

func (b *Bump) claim(name string, addr, n int) {
	for a := addr; a < addr+n; a++ {
		b.used[a] = true
	}
	b.allocated[name] = addr
}

func parseHint(hint string) (int, bool) {
	if hint == "" {
		return 0, false
	}
	var addr int
	if _, err := fmt.Sscanf(hint, "$%x", &addr); err == nil {
		return addr, true
	}
	if _, err := fmt.Sscanf(hint, "%d", &addr); err == nil {
		return addr, true
	}
	return 0, false
}
