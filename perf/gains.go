package perf

import (
	"github.com/shopspring/decimal"

	decimal_opt "github.com/invext/invext/decimal_value"
)

// BasisInput carries everything a cost-basis strategy may consume: the
// record under construction, its immediate predecessor, the predecessor's
// position adjusted for splits up to the current date, and the ordered
// prior history for lot lookups.
type BasisInput struct {
	Cur          *TxValues
	Prev         *TxValues // nil for the first record of a chain
	PrevPosition decimal.Decimal
	Prior        *ValuesList
}

func (in *BasisInput) prevBases() (decimal_opt.DecimalOpt, decimal_opt.DecimalOpt) {
	if in.Prev == nil {
		return decimal_opt.Zero, decimal_opt.Zero
	}
	return in.Prev.LongBasis, in.Prev.ShortBasis
}

// GainsCalc computes the long and short cost basis for the record under
// construction. Implementations are stateless per call; all state comes
// from BasisInput.
type GainsCalc interface {
	Basis(in *BasisInput) (long decimal_opt.DecimalOpt, short decimal_opt.DecimalOpt)
	String() string
}

// AverageCostCalc blends every acquisition into a single per-unit cost.
//
// On growth (position magnitude increases, or opens from flat), the new
// cash plus commission and expense folds into the basis. On reduction the
// basis scales by the ratio of new to old position, which is exactly
// "historical average unit cost times remaining quantity".
type AverageCostCalc struct{}

func (AverageCostCalc) String() string { return "average" }

func (c AverageCostCalc) Basis(in *BasisInput) (decimal_opt.DecimalOpt, decimal_opt.DecimalOpt) {
	prevLong, prevShort := in.prevBases()
	cur := in.Cur

	if cur.IsLong() {
		return averageSide(cur.Buy, prevLong, in.PrevPosition, cur), decimal_opt.Zero
	}
	if cur.IsShort() {
		return decimal_opt.Zero, averageSide(cur.ShortSell, prevShort, in.PrevPosition, cur)
	}
	return decimal_opt.Zero, decimal_opt.Zero
}

// averageSide handles one basis side. acquireCash is Buy for the long side
// and ShortSell for the short side; signs take care of the rest (Buy <= 0
// grows a positive long basis, ShortSell >= 0 grows a negative short
// basis).
func averageSide(
	acquireCash decimal.Decimal, prevBasis decimal_opt.DecimalOpt,
	prevPos decimal.Decimal, cur *TxValues) decimal_opt.DecimalOpt {

	grew := cur.Position.Abs().GreaterThanOrEqual(prevPos.Abs())
	if grew || prevPos.Abs().LessThanOrEqual(positionEpsilon) {
		spent := acquireCash.Add(cur.Commission).Add(cur.Expense)
		return prevBasis.SubD(spent)
	}
	// Reduction: scale by remaining fraction of the position.
	return prevBasis.MulD(cur.Position).DivD(prevPos)
}

// LotMatchingCalc removes basis at the unit cost of specifically allocated
// lots. The allocation table maps the originating transaction id to the
// quantity consumed from that lot, expressed in origin-date units; both
// quantity and unit cost are split-adjusted to the current date. Growth
// and any disposal without an allocation table degrade to average cost.
type LotMatchingCalc struct{}

func (LotMatchingCalc) String() string { return "lots" }

func (c LotMatchingCalc) Basis(in *BasisInput) (decimal_opt.DecimalOpt, decimal_opt.DecimalOpt) {
	cur := in.Cur
	reducing := cur.Position.Abs().LessThan(in.PrevPosition.Abs())
	if !reducing || len(cur.Txn.LotAllocations) == 0 {
		return AverageCostCalc{}.Basis(in)
	}

	unitCost, ok := allocatedUnitCost(in)
	if !ok {
		return AverageCostCalc{}.Basis(in)
	}

	prevLong, prevShort := in.prevBases()
	removedQty := in.PrevPosition.Sub(cur.Position)
	removedBasis := unitCost.MulD(removedQty)
	if cur.IsShort() || (cur.IsFlat() && in.PrevPosition.IsNegative()) {
		// Covering lots of a short position: removedQty is negative and
		// the (negative) short basis shrinks toward zero.
		return decimal_opt.Zero, prevShort.Sub(removedBasis)
	}
	return prevLong.Sub(removedBasis), decimal_opt.Zero
}

// allocatedUnitCost returns the quantity-weighted unit cost of the lots
// named in the allocation table, in current-date units.
func allocatedUnitCost(in *BasisInput) (decimal_opt.DecimalOpt, bool) {
	totalQty := decimal.Zero
	totalCost := decimal_opt.Zero

	for id, qty := range in.Cur.Txn.LotAllocations {
		origin, ok := in.Prior.ById(id)
		if !ok {
			return decimal_opt.Null, false
		}
		factor := in.Cur.Security.SplitAdjust(origin.Date, in.Cur.Date)
		qtyAdj := qty.Mul(factor)
		unit := originUnitCost(origin).DivD(factor)
		if unit.IsNull {
			return decimal_opt.Null, false
		}
		totalQty = totalQty.Add(qtyAdj)
		totalCost = totalCost.Add(unit.MulD(qtyAdj))
	}
	if totalQty.Abs().LessThanOrEqual(positionEpsilon) {
		return decimal_opt.Null, false
	}
	return totalCost.DivD(totalQty), true
}

// originUnitCost is the per-unit acquisition cost of a lot at its origin
// date: positive for a bought lot, negative for a shorted one.
func originUnitCost(origin *TxValues) decimal_opt.DecimalOpt {
	if origin.SecQuantity.Abs().LessThanOrEqual(positionEpsilon) {
		return decimal_opt.Null
	}
	acquired := origin.Buy.Add(origin.ShortSell).Add(origin.Commission)
	return decimal_opt.New(acquired.Neg()).DivD(origin.SecQuantity)
}
