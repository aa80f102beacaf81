package concore

import "fmt"

type boolState int

const (
	boolFalseOnly boolState = iota
	boolTrueOnly
	boolBoth
	boolEmpty
)

// BoolDomain is the four-state {false-only, true-only, both, empty} domain.
// It is numeric (range {0,1}), resolving the isNumeric/isSymbolic ambiguity
// flagged for this variant: boolean and symbolic domains are kept disjoint.
type BoolDomain struct {
	state    boolState
	closed   bool
	listener DomainListener
}

// NewBoolDomain constructs the {false,true} domain.
func NewBoolDomain() *BoolDomain {
	return &BoolDomain{state: boolBoth, closed: true}
}

func (d *BoolDomain) TypeName() string       { return "bool" }
func (d *BoolDomain) Family() DomainFamily   { return FamilyNumeric }
func (d *BoolDomain) Epsilon() float64       { return MinDelta }
func (d *BoolDomain) IsEmpty() bool          { return d.state == boolEmpty }
func (d *BoolDomain) IsClosed() bool         { return d.closed }
func (d *BoolDomain) IsSingleton() bool      { return d.state == boolFalseOnly || d.state == boolTrueOnly }
func (d *BoolDomain) SetListener(l DomainListener) { d.listener = l }
func (d *BoolDomain) Listener() DomainListener     { return d.listener }

func (d *BoolDomain) SingletonValue() (Value, bool) {
	switch d.state {
	case boolFalseOnly:
		return NumValue(0), true
	case boolTrueOnly:
		return NumValue(1), true
	default:
		return Value{}, false
	}
}

func (d *BoolDomain) Size() (int, bool) {
	switch d.state {
	case boolEmpty:
		return 0, true
	case boolFalseOnly, boolTrueOnly:
		return 1, true
	default:
		return 2, true
	}
}

func (d *BoolDomain) Contains(v Value) bool {
	if v.IsSymbolic() {
		return false
	}
	b := v.Num() != 0
	switch d.state {
	case boolFalseOnly:
		return !b
	case boolTrueOnly:
		return b
	case boolBoth:
		return true
	default:
		return false
	}
}

func (d *BoolDomain) bounds() (float64, float64) {
	switch d.state {
	case boolFalseOnly:
		return 0, 0
	case boolTrueOnly:
		return 1, 1
	case boolBoth:
		return 0, 1
	default:
		return 1, 0
	}
}

func (d *BoolDomain) notify(kind ChangeKind, empty bool) error {
	if d.listener == nil {
		return nil
	}
	if empty {
		d.listener.NotifyChange(ChangeEmptied)
		return nil
	}
	d.listener.NotifyChange(kind)
	return nil
}

func (d *BoolDomain) Intersect(other Domain) (bool, error) {
	if !d.CanBeCompared(other) {
		return false, typeMismatch("BoolDomain.Intersect: incompatible domain")
	}
	lo, hi := numericBounds(other)
	return d.IntersectBounds(lo, hi)
}

func (d *BoolDomain) IntersectBounds(lo, hi float64) (bool, error) {
	wantFalse := lo <= 0 && hi >= 0
	wantTrue := lo <= 1 && hi >= 1
	return d.restrictTo(wantFalse, wantTrue)
}

func (d *BoolDomain) restrictTo(keepFalse, keepTrue bool) (bool, error) {
	hadFalse := d.state == boolFalseOnly || d.state == boolBoth
	hadTrue := d.state == boolTrueOnly || d.state == boolBoth
	newFalse := hadFalse && keepFalse
	newTrue := hadTrue && keepTrue
	var newState boolState
	switch {
	case newFalse && newTrue:
		newState = boolBoth
	case newFalse:
		newState = boolFalseOnly
	case newTrue:
		newState = boolTrueOnly
	default:
		newState = boolEmpty
	}
	if newState == d.state {
		return false, nil
	}
	wasSingleton := d.IsSingleton()
	d.state = newState
	if newState == boolEmpty {
		d.notify(ChangeEmptied, true)
		return true, nil
	}
	if d.IsSingleton() && !wasSingleton {
		d.notify(ChangeRestrictToSingleton, false)
	} else {
		d.notify(ChangeBoundsRestricted, false)
	}
	return true, nil
}

func (d *BoolDomain) Difference(other Domain) (bool, error) {
	o, ok := other.(*BoolDomain)
	if !ok {
		return false, typeMismatch("BoolDomain.Difference: incompatible domain")
	}
	keepFalse := !(o.state == boolFalseOnly || o.state == boolBoth)
	keepTrue := !(o.state == boolTrueOnly || o.state == boolBoth)
	return d.restrictTo(keepFalse, keepTrue)
}

func (d *BoolDomain) Relax(other Domain) error {
	o, ok := other.(*BoolDomain)
	if !ok {
		return typeMismatch("BoolDomain.Relax: incompatible domain")
	}
	if !supersetBool(o.state, d.state) {
		return invalidOperation("BoolDomain.Relax: other does not contain this domain")
	}
	d.state = o.state
	return d.notify(ChangeRelaxed, d.IsEmpty())
}

func supersetBool(super, sub boolState) bool {
	if sub == boolEmpty {
		return true
	}
	if super == boolBoth {
		return true
	}
	return super == sub
}

func (d *BoolDomain) Set(v Value) error {
	if !d.Contains(v) {
		d.state = boolEmpty
		return d.notify(ChangeEmptied, true)
	}
	if v.Num() != 0 {
		d.state = boolTrueOnly
	} else {
		d.state = boolFalseOnly
	}
	return d.notify(ChangeSetToSingleton, false)
}

func (d *BoolDomain) Reset(other Domain) error {
	o, ok := other.(*BoolDomain)
	if !ok {
		return typeMismatch("BoolDomain.Reset: incompatible domain")
	}
	d.state = o.state
	return d.notify(ChangeReset, d.IsEmpty())
}

func (d *BoolDomain) Insert(v Value) error {
	return invalidOperation("BoolDomain.Insert: bool domains do not support insert")
}

func (d *BoolDomain) Remove(v Value) error {
	if !d.Contains(v) {
		return nil
	}
	if v.Num() != 0 {
		return d.removeTrue()
	}
	return d.removeFalse()
}

// removeTrue and removeFalse are only called once Remove has checked that
// the value is a member, so the state is a singleton of it or boolBoth.
func (d *BoolDomain) removeTrue() error {
	if d.state == boolBoth {
		d.state = boolFalseOnly
	} else {
		d.state = boolEmpty
	}
	return d.notify(ChangeValueRemoved, d.IsEmpty())
}

func (d *BoolDomain) removeFalse() error {
	if d.state == boolBoth {
		d.state = boolTrueOnly
	} else {
		d.state = boolEmpty
	}
	return d.notify(ChangeValueRemoved, d.IsEmpty())
}

func (d *BoolDomain) Close() error {
	wasClosed := d.closed
	d.closed = true
	if wasClosed {
		return nil
	}
	if err := d.notify(ChangeClosed, false); err != nil {
		return err
	}
	if d.IsEmpty() {
		return d.notify(ChangeEmptied, true)
	}
	return nil
}

func (d *BoolDomain) Open() error {
	if !d.closed {
		return nil
	}
	d.closed = false
	return d.notify(ChangeOpened, false)
}

func (d *BoolDomain) Equal(other Domain) bool {
	o, ok := other.(*BoolDomain)
	return ok && d.state == o.state && d.closed == o.closed
}

func (d *BoolDomain) CanBeCompared(other Domain) bool {
	return other != nil && other.Family() == FamilyNumeric
}

func (d *BoolDomain) Clone() Domain {
	c := *d
	c.listener = nil
	return &c
}

func (d *BoolDomain) String() string {
	switch d.state {
	case boolFalseOnly:
		return "bool:{false}"
	case boolTrueOnly:
		return "bool:{true}"
	case boolBoth:
		return "bool:{false,true}"
	default:
		return "bool:{}"
	}
}

var _ fmt.Stringer = (*BoolDomain)(nil)

var _ Domain = (*BoolDomain)(nil)
