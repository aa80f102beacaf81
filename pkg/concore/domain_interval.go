package concore

import (
	"fmt"
	"math"
)

// intervalBase holds the shared bookkeeping for IntInterval and
// FloatInterval: the declared open/closed flag and the attached listener.
// "closed" here is the domain-family open/closed flag from the spec (it
// governs Insert), not the mathematical closed/open interval notion — both
// interval variants are always mathematically closed intervals [lo, ub].
type intervalBase struct {
	closed   bool
	listener DomainListener
}

func (b *intervalBase) IsClosed() bool             { return b.closed }
func (b *intervalBase) SetListener(l DomainListener) { b.listener = l }
func (b *intervalBase) Listener() DomainListener    { return b.listener }

func (b *intervalBase) notify(kind ChangeKind, empty bool) error {
	if b.listener == nil {
		return nil
	}
	if empty {
		b.listener.NotifyChange(ChangeEmptied)
		return nil
	}
	b.listener.NotifyChange(kind)
	return nil
}

// IntInterval is a closed interval over the integers, [Lo, Ub]. Lo > Ub
// denotes the empty interval. A bound whose magnitude exceeds FiniteMax is
// treated as unbounded.
type IntInterval struct {
	intervalBase
	Lo, Ub int64
}

// NewIntInterval constructs a closed integer interval.
func NewIntInterval(lo, ub int64) *IntInterval {
	return &IntInterval{intervalBase: intervalBase{closed: true}, Lo: lo, Ub: ub}
}

// NewIntIntervalFull constructs the unbounded integer interval.
func NewIntIntervalFull() *IntInterval {
	return NewIntInterval(-FiniteMax, FiniteMax)
}

func (d *IntInterval) TypeName() string      { return "int" }
func (d *IntInterval) Family() DomainFamily  { return FamilyNumeric }
func (d *IntInterval) Epsilon() float64      { return MinDelta }
func (d *IntInterval) IsEmpty() bool         { return d.Lo > d.Ub }
func (d *IntInterval) IsSingleton() bool     { return !d.IsEmpty() && d.Lo == d.Ub }

func (d *IntInterval) SingletonValue() (Value, bool) {
	if !d.IsSingleton() {
		return Value{}, false
	}
	return NumValue(float64(d.Lo)), true
}

func (d *IntInterval) Size() (int, bool) {
	if d.IsEmpty() {
		return 0, true
	}
	if d.isFinite() {
		return int(d.Ub-d.Lo) + 1, true
	}
	return 0, false
}

func (d *IntInterval) isFinite() bool {
	return d.Lo > -FiniteMax && d.Ub < FiniteMax
}

func (d *IntInterval) Contains(v Value) bool {
	if v.IsSymbolic() || d.IsEmpty() {
		return false
	}
	n := int64(math.Round(v.Num()))
	return n >= d.Lo && n <= d.Ub
}

func (d *IntInterval) Intersect(other Domain) (bool, error) {
	if !d.CanBeCompared(other) {
		return false, typeMismatch("IntInterval.Intersect: incompatible domain")
	}
	o, ok := other.(*IntInterval)
	if !ok {
		// A numeric-family domain of a different shape (enum, bool):
		// intersect against its [min, max] envelope only; members missing
		// from inside that envelope are not removed.
		lo, hi := numericBounds(other)
		return d.IntersectBounds(lo, hi)
	}
	return d.intersectWith(o.Lo, o.Ub)
}

func (d *IntInterval) IntersectBounds(lo, hi float64) (bool, error) {
	return d.intersectWith(int64(math.Ceil(lo)), int64(math.Floor(hi)))
}

func (d *IntInterval) intersectWith(lo, ub int64) (bool, error) {
	wasEmpty := d.IsEmpty()
	newLo, newUb := max64(d.Lo, lo), min64(d.Ub, ub)
	changed := newLo != d.Lo || newUb != d.Ub
	if !changed {
		return false, nil
	}
	lowerMoved := newLo > d.Lo
	upperMoved := newUb < d.Ub
	d.Lo, d.Ub = newLo, newUb
	nowEmpty := d.IsEmpty()
	switch {
	case nowEmpty && !wasEmpty:
		d.notify(ChangeEmptied, true)
	case lowerMoved && upperMoved:
		d.notify(ChangeBoundsRestricted, false)
	case lowerMoved:
		d.notify(ChangeLowerBoundIncreased, false)
	case upperMoved:
		d.notify(ChangeUpperBoundDecreased, false)
	}
	return true, nil
}

func (d *IntInterval) Difference(other Domain) (bool, error) {
	if !d.CanBeCompared(other) {
		return false, typeMismatch("IntInterval.Difference: incompatible domain")
	}
	o, ok := other.(*IntInterval)
	if !ok || o.IsEmpty() {
		return false, nil
	}
	// Only remove when other fully covers one side of this interval;
	// punching a hole in the middle of an interval domain isn't
	// representable without splitting, which this variant does not support.
	if o.Lo <= d.Lo && o.Ub >= d.Lo {
		return d.intersectWith(o.Ub+1, d.Ub)
	}
	if o.Lo <= d.Ub && o.Ub >= d.Ub {
		return d.intersectWith(d.Lo, o.Lo-1)
	}
	return false, nil
}

func (d *IntInterval) Relax(other Domain) error {
	o, ok := other.(*IntInterval)
	if !ok {
		return typeMismatch("IntInterval.Relax: incompatible domain")
	}
	if o.Lo > d.Lo || o.Ub < d.Ub {
		return invalidOperation("IntInterval.Relax: other does not contain this domain")
	}
	d.Lo, d.Ub = o.Lo, o.Ub
	return d.notify(ChangeRelaxed, d.IsEmpty())
}

func (d *IntInterval) Set(v Value) error {
	if !d.Contains(v) {
		d.Lo, d.Ub = 1, 0
		return d.notify(ChangeEmptied, true)
	}
	n := int64(math.Round(v.Num()))
	d.Lo, d.Ub = n, n
	return d.notify(ChangeSetToSingleton, false)
}

func (d *IntInterval) Reset(other Domain) error {
	o, ok := other.(*IntInterval)
	if !ok {
		return typeMismatch("IntInterval.Reset: incompatible domain")
	}
	d.Lo, d.Ub = o.Lo, o.Ub
	return d.notify(ChangeReset, d.IsEmpty())
}

func (d *IntInterval) Insert(v Value) error {
	return invalidOperation("IntInterval.Insert: interval domains do not support insert")
}

func (d *IntInterval) Remove(v Value) error {
	if !d.Contains(v) {
		return nil
	}
	n := int64(math.Round(v.Num()))
	if n == d.Lo {
		d.Lo++
	} else if n == d.Ub {
		d.Ub--
	} else {
		return invalidOperation("IntInterval.Remove: cannot punch a hole at %v", v)
	}
	return d.notify(ChangeValueRemoved, d.IsEmpty())
}

func (d *IntInterval) Close() error {
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

func (d *IntInterval) Open() error {
	if !d.closed {
		return nil
	}
	d.closed = false
	return d.notify(ChangeOpened, false)
}

func (d *IntInterval) Equal(other Domain) bool {
	o, ok := other.(*IntInterval)
	if !ok {
		return false
	}
	if d.IsEmpty() && o.IsEmpty() {
		return true
	}
	return d.closed == o.closed && d.Lo == o.Lo && d.Ub == o.Ub
}

func (d *IntInterval) CanBeCompared(other Domain) bool {
	return other != nil && other.Family() == FamilyNumeric
}

func (d *IntInterval) Clone() Domain {
	c := *d
	c.listener = nil
	return &c
}

func (d *IntInterval) String() string {
	if d.IsEmpty() {
		return "int:{}"
	}
	return fmt.Sprintf("int:[%d,%d]", d.Lo, d.Ub)
}

// FloatInterval is a closed interval over the reals, [Lo, Ub], compared
// with the ε-tolerant rules in compareEqual/lt.
type FloatInterval struct {
	intervalBase
	Lo, Ub float64
}

// NewFloatInterval constructs a closed float interval.
func NewFloatInterval(lo, ub float64) *FloatInterval {
	return &FloatInterval{intervalBase: intervalBase{closed: true}, Lo: lo, Ub: ub}
}

// NewFloatIntervalFull constructs the unbounded float interval.
func NewFloatIntervalFull() *FloatInterval {
	return NewFloatInterval(-FiniteMax, FiniteMax)
}

func (d *FloatInterval) TypeName() string     { return "float" }
func (d *FloatInterval) Family() DomainFamily { return FamilyNumeric }
func (d *FloatInterval) Epsilon() float64     { return FloatEpsilon }
func (d *FloatInterval) IsEmpty() bool        { return lt(d.Ub, d.Lo, d.Epsilon()) }
func (d *FloatInterval) IsSingleton() bool {
	return !d.IsEmpty() && compareEqual(d.Lo, d.Ub, d.Epsilon())
}

func (d *FloatInterval) SingletonValue() (Value, bool) {
	if !d.IsSingleton() {
		return Value{}, false
	}
	return NumValue(d.Lo), true
}

func (d *FloatInterval) Size() (int, bool) {
	if d.IsEmpty() {
		return 0, true
	}
	return 0, false // reals are never finite-countable
}

func (d *FloatInterval) Contains(v Value) bool {
	if v.IsSymbolic() || d.IsEmpty() {
		return false
	}
	eps := d.Epsilon()
	return !lt(v.Num(), d.Lo, eps) && !lt(d.Ub, v.Num(), eps)
}

func (d *FloatInterval) Intersect(other Domain) (bool, error) {
	if !d.CanBeCompared(other) {
		return false, typeMismatch("FloatInterval.Intersect: incompatible domain")
	}
	lo, hi := numericBounds(other)
	return d.IntersectBounds(lo, hi)
}

func (d *FloatInterval) IntersectBounds(lo, hi float64) (bool, error) {
	wasEmpty := d.IsEmpty()
	eps := d.Epsilon()
	newLo, newUb := d.Lo, d.Ub
	if lt(d.Lo, lo, eps) {
		newLo = lo
	}
	if lt(hi, d.Ub, eps) {
		newUb = hi
	}
	changed := !compareEqual(newLo, d.Lo, eps) || !compareEqual(newUb, d.Ub, eps)
	if !changed {
		return false, nil
	}
	lowerMoved := lt(d.Lo, newLo, eps)
	upperMoved := lt(newUb, d.Ub, eps)
	d.Lo, d.Ub = newLo, newUb
	nowEmpty := d.IsEmpty()
	switch {
	case nowEmpty && !wasEmpty:
		d.notify(ChangeEmptied, true)
	case lowerMoved && upperMoved:
		d.notify(ChangeBoundsRestricted, false)
	case lowerMoved:
		d.notify(ChangeLowerBoundIncreased, false)
	case upperMoved:
		d.notify(ChangeUpperBoundDecreased, false)
	}
	return true, nil
}

func (d *FloatInterval) Difference(other Domain) (bool, error) {
	o, ok := other.(*FloatInterval)
	if !ok || o.IsEmpty() {
		return false, nil
	}
	eps := d.Epsilon()
	if !lt(o.Ub, d.Lo, eps) && !lt(d.Lo, o.Lo, eps) {
		return d.IntersectBounds(o.Ub, d.Ub)
	}
	if !lt(d.Ub, o.Lo, eps) && !lt(o.Ub, d.Ub, eps) {
		return d.IntersectBounds(d.Lo, o.Lo)
	}
	return false, nil
}

func (d *FloatInterval) Relax(other Domain) error {
	o, ok := other.(*FloatInterval)
	if !ok {
		return typeMismatch("FloatInterval.Relax: incompatible domain")
	}
	eps := d.Epsilon()
	if lt(d.Lo, o.Lo, eps) || lt(o.Ub, d.Ub, eps) {
		return invalidOperation("FloatInterval.Relax: other does not contain this domain")
	}
	d.Lo, d.Ub = o.Lo, o.Ub
	return d.notify(ChangeRelaxed, d.IsEmpty())
}

func (d *FloatInterval) Set(v Value) error {
	if !d.Contains(v) {
		d.Lo, d.Ub = 1, 0
		return d.notify(ChangeEmptied, true)
	}
	d.Lo, d.Ub = v.Num(), v.Num()
	return d.notify(ChangeSetToSingleton, false)
}

func (d *FloatInterval) Reset(other Domain) error {
	o, ok := other.(*FloatInterval)
	if !ok {
		return typeMismatch("FloatInterval.Reset: incompatible domain")
	}
	d.Lo, d.Ub = o.Lo, o.Ub
	return d.notify(ChangeReset, d.IsEmpty())
}

func (d *FloatInterval) Insert(v Value) error {
	return invalidOperation("FloatInterval.Insert: interval domains do not support insert")
}

func (d *FloatInterval) Remove(v Value) error {
	return invalidOperation("FloatInterval.Remove: cannot punch a hole in a float interval")
}

func (d *FloatInterval) Close() error {
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

func (d *FloatInterval) Open() error {
	if !d.closed {
		return nil
	}
	d.closed = false
	return d.notify(ChangeOpened, false)
}

func (d *FloatInterval) Equal(other Domain) bool {
	o, ok := other.(*FloatInterval)
	if !ok {
		return false
	}
	if d.IsEmpty() && o.IsEmpty() {
		return true
	}
	eps := d.Epsilon()
	return d.closed == o.closed && compareEqual(d.Lo, o.Lo, eps) && compareEqual(d.Ub, o.Ub, eps)
}

func (d *FloatInterval) CanBeCompared(other Domain) bool {
	return other != nil && other.Family() == FamilyNumeric
}

func (d *FloatInterval) Clone() Domain {
	c := *d
	c.listener = nil
	return &c
}

func (d *FloatInterval) String() string {
	if d.IsEmpty() {
		return "float:{}"
	}
	return fmt.Sprintf("float:[%g,%g]", d.Lo, d.Ub)
}

func max64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}

func min64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}

// numericBounds extracts the tightest known [lo,hi] envelope from any
// numeric domain, used when intersecting across variants (e.g. an
// IntInterval against an EnumNum).
func numericBounds(d Domain) (float64, float64) {
	switch o := d.(type) {
	case *IntInterval:
		if o.IsEmpty() {
			return 1, 0
		}
		return float64(o.Lo), float64(o.Ub)
	case *FloatInterval:
		if o.IsEmpty() {
			return 1, 0
		}
		return o.Lo, o.Ub
	case *EnumNum:
		return o.bounds()
	case *BoolDomain:
		return o.bounds()
	default:
		return -FiniteMax, FiniteMax
	}
}

// DomainBounds exposes numericBounds to other packages (the temporal
// bridge needs a numeric domain's envelope to seed a TNet edge window). ok
// is false for a non-numeric domain.
func DomainBounds(d Domain) (lo, hi float64, ok bool) {
	if d.Family() != FamilyNumeric {
		return 0, 0, false
	}
	lo, hi = numericBounds(d)
	return lo, hi, true
}

var (
	_ Domain = (*IntInterval)(nil)
	_ Domain = (*FloatInterval)(nil)
)
