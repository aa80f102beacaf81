package concore

import (
	"fmt"
	"sort"
	"strings"
)

// EnumNum is an ordered set of real numbers, with an open flag supporting
// incremental Insert before the set is Close()d.
type EnumNum struct {
	members  []float64 // kept sorted, deduplicated
	closed   bool
	listener DomainListener
}

// NewEnumNum constructs a closed numeric enumeration from the given values
// (deduplicated and sorted).
func NewEnumNum(values ...float64) *EnumNum {
	d := &EnumNum{closed: true}
	for _, v := range values {
		d.insertSorted(v)
	}
	return d
}

// NewOpenEnumNum constructs an open (incrementally-growable) numeric
// enumeration.
func NewOpenEnumNum() *EnumNum {
	return &EnumNum{closed: false}
}

func (d *EnumNum) TypeName() string       { return "enum_num" }
func (d *EnumNum) Family() DomainFamily   { return FamilyNumeric }
func (d *EnumNum) Epsilon() float64       { return FloatEpsilon }
func (d *EnumNum) IsEmpty() bool          { return len(d.members) == 0 }
func (d *EnumNum) IsClosed() bool         { return d.closed }
func (d *EnumNum) IsSingleton() bool      { return len(d.members) == 1 }
func (d *EnumNum) SetListener(l DomainListener) { d.listener = l }
func (d *EnumNum) Listener() DomainListener     { return d.listener }

func (d *EnumNum) SingletonValue() (Value, bool) {
	if len(d.members) != 1 {
		return Value{}, false
	}
	return NumValue(d.members[0]), true
}

func (d *EnumNum) Size() (int, bool) {
	if !d.closed {
		return 0, false
	}
	return len(d.members), true
}

func (d *EnumNum) Contains(v Value) bool {
	if v.IsSymbolic() {
		return false
	}
	_, ok := d.find(v.Num())
	return ok
}

func (d *EnumNum) bounds() (float64, float64) {
	if len(d.members) == 0 {
		return 1, 0
	}
	return d.members[0], d.members[len(d.members)-1]
}

func (d *EnumNum) find(v float64) (int, bool) {
	i := sort.Search(len(d.members), func(i int) bool { return d.members[i] >= v })
	if i < len(d.members) && compareEqual(d.members[i], v, FloatEpsilon) {
		return i, true
	}
	return i, false
}

func (d *EnumNum) insertSorted(v float64) bool {
	i, ok := d.find(v)
	if ok {
		return false
	}
	d.members = append(d.members, 0)
	copy(d.members[i+1:], d.members[i:])
	d.members[i] = v
	return true
}

func (d *EnumNum) notify(kind ChangeKind, empty bool) {
	if d.listener == nil {
		return
	}
	if empty {
		d.listener.NotifyChange(ChangeEmptied)
		return
	}
	d.listener.NotifyChange(kind)
}

func (d *EnumNum) Intersect(other Domain) (bool, error) {
	if !d.CanBeCompared(other) {
		return false, typeMismatch("EnumNum.Intersect: incompatible domain")
	}
	wasEmpty := d.IsEmpty()
	kept := d.members[:0:0]
	for _, m := range d.members {
		if other.Contains(NumValue(m)) {
			kept = append(kept, m)
		}
	}
	changed := len(kept) != len(d.members)
	d.members = kept
	if changed {
		d.emitNarrowed(wasEmpty)
	}
	// Two open enums intersecting stay open; intersecting a closed set into
	// an open enum closes it.
	if o, ok := other.(*EnumNum); !d.closed && (!ok || o.closed) {
		if err := d.Close(); err != nil {
			return changed, err
		}
	}
	return changed, nil
}

func (d *EnumNum) IntersectBounds(lo, hi float64) (bool, error) {
	wasEmpty := d.IsEmpty()
	kept := d.members[:0:0]
	for _, m := range d.members {
		if !lt(m, lo, FloatEpsilon) && !lt(hi, m, FloatEpsilon) {
			kept = append(kept, m)
		}
	}
	changed := len(kept) != len(d.members)
	d.members = kept
	if changed {
		d.emitNarrowed(wasEmpty)
	}
	return changed, nil
}

func (d *EnumNum) emitNarrowed(wasEmpty bool) {
	if d.IsEmpty() {
		if !wasEmpty {
			d.notify(ChangeEmptied, true)
		}
		return
	}
	if d.IsSingleton() {
		d.notify(ChangeRestrictToSingleton, false)
		return
	}
	d.notify(ChangeBoundsRestricted, false)
}

func (d *EnumNum) Difference(other Domain) (bool, error) {
	wasEmpty := d.IsEmpty()
	kept := d.members[:0:0]
	for _, m := range d.members {
		if !other.Contains(NumValue(m)) {
			kept = append(kept, m)
		}
	}
	changed := len(kept) != len(d.members)
	d.members = kept
	if changed {
		d.emitNarrowed(wasEmpty)
	}
	return changed, nil
}

func (d *EnumNum) Relax(other Domain) error {
	o, ok := other.(*EnumNum)
	if !ok {
		return typeMismatch("EnumNum.Relax: incompatible domain")
	}
	for _, m := range d.members {
		if _, found := o.find(m); !found {
			return invalidOperation("EnumNum.Relax: other does not contain this domain")
		}
	}
	d.members = append([]float64(nil), o.members...)
	d.notify(ChangeRelaxed, d.IsEmpty())
	return nil
}

func (d *EnumNum) Set(v Value) error {
	if !d.Contains(v) {
		d.members = nil
		d.notify(ChangeEmptied, true)
		return nil
	}
	d.members = []float64{v.Num()}
	d.notify(ChangeSetToSingleton, false)
	return nil
}

func (d *EnumNum) Reset(other Domain) error {
	o, ok := other.(*EnumNum)
	if !ok {
		return typeMismatch("EnumNum.Reset: incompatible domain")
	}
	d.members = append([]float64(nil), o.members...)
	d.notify(ChangeReset, d.IsEmpty())
	return nil
}

func (d *EnumNum) Insert(v Value) error {
	if v.IsSymbolic() {
		return typeMismatch("EnumNum.Insert: symbolic value")
	}
	if d.closed {
		if d.Contains(v) {
			return nil
		}
		return invalidOperation("EnumNum.Insert: domain is closed")
	}
	d.insertSorted(v.Num())
	return nil
}

func (d *EnumNum) Remove(v Value) error {
	if v.IsSymbolic() {
		return nil
	}
	i, ok := d.find(v.Num())
	if !ok {
		return nil
	}
	d.members = append(d.members[:i], d.members[i+1:]...)
	d.notify(ChangeValueRemoved, d.IsEmpty())
	return nil
}

func (d *EnumNum) Close() error {
	wasClosed := d.closed
	d.closed = true
	if wasClosed {
		return nil
	}
	d.notify(ChangeClosed, false)
	if d.IsEmpty() {
		d.notify(ChangeEmptied, true)
	}
	return nil
}

func (d *EnumNum) Open() error {
	if !d.closed {
		return nil
	}
	d.closed = false
	d.notify(ChangeOpened, false)
	return nil
}

func (d *EnumNum) Equal(other Domain) bool {
	o, ok := other.(*EnumNum)
	if !ok || d.closed != o.closed || len(d.members) != len(o.members) {
		return false
	}
	for i, m := range d.members {
		if !compareEqual(m, o.members[i], FloatEpsilon) {
			return false
		}
	}
	return true
}

func (d *EnumNum) CanBeCompared(other Domain) bool {
	return other != nil && other.Family() == FamilyNumeric
}

func (d *EnumNum) Clone() Domain {
	c := &EnumNum{closed: d.closed, members: append([]float64(nil), d.members...)}
	return c
}

func (d *EnumNum) String() string {
	parts := make([]string, len(d.members))
	for i, m := range d.members {
		parts[i] = formatNum(m)
	}
	tag := "{"
	if !d.closed {
		tag = "open{"
	}
	return "enum_num:" + tag + strings.Join(parts, ",") + "}"
}

// EnumSym is an ordered set of interned symbolic keys carrying an
// element-type tag (e.g. "color", "shape") used by CanBeCompared to keep
// unrelated symbol families from being intersected together.
type EnumSym struct {
	elemType string
	members  []string // sorted, deduplicated
	closed   bool
	listener DomainListener
}

// NewEnumSym constructs a closed symbolic enumeration.
func NewEnumSym(elemType string, values ...string) *EnumSym {
	d := &EnumSym{elemType: elemType, closed: true}
	for _, v := range values {
		d.insertSorted(v)
	}
	return d
}

// NewOpenEnumSym constructs an open symbolic enumeration.
func NewOpenEnumSym(elemType string) *EnumSym {
	return &EnumSym{elemType: elemType}
}

func (d *EnumSym) TypeName() string       { return "enum_sym:" + d.elemType }
func (d *EnumSym) Family() DomainFamily   { return FamilySymbolic }
func (d *EnumSym) Epsilon() float64       { return MinDelta }
func (d *EnumSym) IsEmpty() bool          { return len(d.members) == 0 }
func (d *EnumSym) IsClosed() bool         { return d.closed }
func (d *EnumSym) IsSingleton() bool      { return len(d.members) == 1 }
func (d *EnumSym) SetListener(l DomainListener) { d.listener = l }
func (d *EnumSym) Listener() DomainListener     { return d.listener }

func (d *EnumSym) SingletonValue() (Value, bool) {
	if len(d.members) != 1 {
		return Value{}, false
	}
	return SymValue(d.members[0]), true
}

func (d *EnumSym) Size() (int, bool) {
	if !d.closed {
		return 0, false
	}
	return len(d.members), true
}

func (d *EnumSym) Contains(v Value) bool {
	if !v.IsSymbolic() {
		return false
	}
	_, ok := d.find(v.Sym())
	return ok
}

func (d *EnumSym) find(s string) (int, bool) {
	i := sort.SearchStrings(d.members, s)
	return i, i < len(d.members) && d.members[i] == s
}

func (d *EnumSym) insertSorted(s string) bool {
	i, ok := d.find(s)
	if ok {
		return false
	}
	d.members = append(d.members, "")
	copy(d.members[i+1:], d.members[i:])
	d.members[i] = s
	return true
}

func (d *EnumSym) notify(kind ChangeKind, empty bool) {
	if d.listener == nil {
		return
	}
	if empty {
		d.listener.NotifyChange(ChangeEmptied)
		return
	}
	d.listener.NotifyChange(kind)
}

func (d *EnumSym) emitNarrowed(wasEmpty bool) {
	if d.IsEmpty() {
		if !wasEmpty {
			d.notify(ChangeEmptied, true)
		}
		return
	}
	if d.IsSingleton() {
		d.notify(ChangeRestrictToSingleton, false)
		return
	}
	d.notify(ChangeBoundsRestricted, false)
}

func (d *EnumSym) Intersect(other Domain) (bool, error) {
	if !d.CanBeCompared(other) {
		return false, typeMismatch("EnumSym.Intersect: incompatible domain")
	}
	wasEmpty := d.IsEmpty()
	kept := d.members[:0:0]
	for _, m := range d.members {
		if other.Contains(SymValue(m)) {
			kept = append(kept, m)
		}
	}
	changed := len(kept) != len(d.members)
	d.members = kept
	if changed {
		d.emitNarrowed(wasEmpty)
	}
	return changed, nil
}

func (d *EnumSym) IntersectBounds(lo, hi float64) (bool, error) {
	return false, typeMismatch("EnumSym.IntersectBounds: not a numeric domain")
}

func (d *EnumSym) Difference(other Domain) (bool, error) {
	wasEmpty := d.IsEmpty()
	kept := d.members[:0:0]
	for _, m := range d.members {
		if !other.Contains(SymValue(m)) {
			kept = append(kept, m)
		}
	}
	changed := len(kept) != len(d.members)
	d.members = kept
	if changed {
		d.emitNarrowed(wasEmpty)
	}
	return changed, nil
}

func (d *EnumSym) Relax(other Domain) error {
	o, ok := other.(*EnumSym)
	if !ok || o.elemType != d.elemType {
		return typeMismatch("EnumSym.Relax: incompatible domain")
	}
	for _, m := range d.members {
		if _, found := o.find(m); !found {
			return invalidOperation("EnumSym.Relax: other does not contain this domain")
		}
	}
	d.members = append([]string(nil), o.members...)
	d.notify(ChangeRelaxed, d.IsEmpty())
	return nil
}

func (d *EnumSym) Set(v Value) error {
	if !d.Contains(v) {
		d.members = nil
		d.notify(ChangeEmptied, true)
		return nil
	}
	d.members = []string{v.Sym()}
	d.notify(ChangeSetToSingleton, false)
	return nil
}

func (d *EnumSym) Reset(other Domain) error {
	o, ok := other.(*EnumSym)
	if !ok {
		return typeMismatch("EnumSym.Reset: incompatible domain")
	}
	d.members = append([]string(nil), o.members...)
	d.notify(ChangeReset, d.IsEmpty())
	return nil
}

func (d *EnumSym) Insert(v Value) error {
	if !v.IsSymbolic() {
		return typeMismatch("EnumSym.Insert: numeric value")
	}
	if d.closed {
		if d.Contains(v) {
			return nil
		}
		return invalidOperation("EnumSym.Insert: domain is closed")
	}
	d.insertSorted(v.Sym())
	return nil
}

func (d *EnumSym) Remove(v Value) error {
	if !v.IsSymbolic() {
		return nil
	}
	i, ok := d.find(v.Sym())
	if !ok {
		return nil
	}
	d.members = append(d.members[:i], d.members[i+1:]...)
	d.notify(ChangeValueRemoved, d.IsEmpty())
	return nil
}

func (d *EnumSym) Close() error {
	wasClosed := d.closed
	d.closed = true
	if wasClosed {
		return nil
	}
	d.notify(ChangeClosed, false)
	if d.IsEmpty() {
		d.notify(ChangeEmptied, true)
	}
	return nil
}

func (d *EnumSym) Open() error {
	if !d.closed {
		return nil
	}
	d.closed = false
	d.notify(ChangeOpened, false)
	return nil
}

func (d *EnumSym) Equal(other Domain) bool {
	o, ok := other.(*EnumSym)
	if !ok || d.elemType != o.elemType || d.closed != o.closed || len(d.members) != len(o.members) {
		return false
	}
	for i, m := range d.members {
		if m != o.members[i] {
			return false
		}
	}
	return true
}

func (d *EnumSym) CanBeCompared(other Domain) bool {
	o, ok := other.(*EnumSym)
	if ok {
		return o.elemType == d.elemType
	}
	return other != nil && other.Family() == FamilySymbolic
}

func (d *EnumSym) Clone() Domain {
	return &EnumSym{elemType: d.elemType, closed: d.closed, members: append([]string(nil), d.members...)}
}

func (d *EnumSym) String() string {
	tag := "{"
	if !d.closed {
		tag = "open{"
	}
	return fmt.Sprintf("enum_sym(%s):%s%s}", d.elemType, tag, strings.Join(d.members, ","))
}

// StringDomain and SymbolDomain are EnumSym specializations distinguished
// only by element-type tag, matching the built-in type names in the domain
// factory (§6).

// NewStringDomain constructs a closed domain of string literals.
func NewStringDomain(values ...string) *EnumSym { return NewEnumSym("string", values...) }

// NewSymbolDomain constructs a closed domain of interned symbol keys.
func NewSymbolDomain(values ...string) *EnumSym { return NewEnumSym("symbol", values...) }

var (
	_ Domain = (*EnumNum)(nil)
	_ Domain = (*EnumSym)(nil)
)
