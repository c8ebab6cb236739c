package keeper

import (
	"math/big"

	"cosmossdk.io/math"

	ammtypes "github.com/paw-chain/pawdex/x/amm/types"
)

// Stableswap invariant solver. All balances entering the solver are in
// 24-decimal comparable units; rated pools additionally scale each balance by
// its oracle rate before solving and scale results back after. Newton
// iterations are bounded to 256 and converge when successive values differ by
// at most 1; non-convergence is an error, never a silent approximation.

const maxIterations = 256

var (
	bigOne       = big.NewInt(1)
	bigPrecision = new(big.Int).Exp(big.NewInt(10), big.NewInt(24), nil)
)

// Fees carries the bps fee pair every stableswap operation prices with.
type Fees struct {
	TradeFeeBps uint32
	AdminFeeBps uint32
}

// ZeroFees prices an operation fee-free (admin-fee share conversion).
func ZeroFees() Fees {
	return Fees{}
}

// tradeFee returns floor(amount * tradeFee / FeeDivisor).
func (f Fees) tradeFee(amount *big.Int) *big.Int {
	out := mulBig(amount, big.NewInt(int64(f.TradeFeeBps)))
	return out.Quo(out, big.NewInt(int64(ammtypes.FeeDivisor)))
}

// adminTradeFee returns the admin share of an already-computed trade fee.
func (f Fees) adminTradeFee(fee *big.Int) *big.Int {
	out := mulBig(fee, big.NewInt(int64(f.AdminFeeBps)))
	return out.Quo(out, big.NewInt(int64(ammtypes.FeeDivisor)))
}

// normalizedTradeFee adjusts the trade fee for the n-token deviation math:
// fee * n / (4 * (n - 1)), applied to a per-token imbalance amount.
func (f Fees) normalizedTradeFee(numCoins int, amount *big.Int) *big.Int {
	adjusted := uint64(f.TradeFeeBps) * uint64(numCoins) / (4 * uint64(numCoins-1))
	out := mulBig(amount, new(big.Int).SetUint64(adjusted))
	return out.Quo(out, big.NewInt(int64(ammtypes.FeeDivisor)))
}

// SwapResult reports a stable-family swap in comparable (unrated) units.
type SwapResult struct {
	NewSourceAmount      math.Int
	NewDestinationAmount math.Int
	AmountSwapped        math.Int
	AdminFee             math.Int
	Fee                  math.Int
}

// StableSwap binds the amplification ramp and per-token rates for one solve.
type StableSwap struct {
	initAmpFactor   uint64
	targetAmpFactor uint64
	currentTime     int64
	initAmpTime     int64
	stopAmpTime     int64
	rates           []math.Int
}

// NewStableSwap builds a solver for a pool at a given block time. rates must
// be 10^24-scaled, one per token (all-ones for plain stable pools).
func NewStableSwap(pool *ammtypes.Pool, now int64, rates []math.Int) *StableSwap {
	return &StableSwap{
		initAmpFactor:   pool.InitAmpFactor,
		targetAmpFactor: pool.TargetAmpFactor,
		currentTime:     now,
		initAmpTime:     pool.InitAmpTime,
		stopAmpTime:     pool.StopAmpTime,
		rates:           rates,
	}
}

// ComputeAmpFactor linearly interpolates the amplification between the ramp
// endpoints; outside the ramp window it returns the respective endpoint.
func (s *StableSwap) ComputeAmpFactor() uint64 {
	if s.currentTime >= s.stopAmpTime {
		return s.targetAmpFactor
	}
	if s.currentTime <= s.initAmpTime {
		return s.initAmpFactor
	}
	elapsed := uint64(s.currentTime - s.initAmpTime)
	window := uint64(s.stopAmpTime - s.initAmpTime)
	if s.targetAmpFactor >= s.initAmpFactor {
		return s.initAmpFactor + (s.targetAmpFactor-s.initAmpFactor)*elapsed/window
	}
	return s.initAmpFactor - (s.initAmpFactor-s.targetAmpFactor)*elapsed/window
}

// applyRate scales one comparable amount into rated space.
func (s *StableSwap) applyRate(cAmount *big.Int, index int) *big.Int {
	out := mulBig(cAmount, s.rates[index].BigInt())
	return out.Quo(out, bigPrecision)
}

// unrate scales a rated-space amount back to comparable units, truncating.
func (s *StableSwap) unrate(amount *big.Int, index int) *big.Int {
	out := mulBig(amount, bigPrecision)
	return out.Quo(out, s.rates[index].BigInt())
}

// ratedAmounts scales a full comparable vector into rated space.
func (s *StableSwap) ratedAmounts(cAmounts []math.Int) []*big.Int {
	out := make([]*big.Int, len(cAmounts))
	for i, a := range cAmounts {
		out[i] = s.applyRate(a.BigInt(), i)
	}
	return out
}

// computeDRaw runs the Newton iteration for the invariant D over rated
// balances. Initial guess is Σx; converges when |D_k+1 − D_k| ≤ 1.
func computeDRaw(amp uint64, xs []*big.Int) (*big.Int, error) {
	n := int64(len(xs))
	sumX := new(big.Int)
	for _, x := range xs {
		sumX.Add(sumX, x)
	}
	if sumX.Sign() == 0 {
		return new(big.Int), nil
	}

	nPowN := new(big.Int).Exp(big.NewInt(n), big.NewInt(n), nil)
	ann := mulBig(new(big.Int).SetUint64(amp), nPowN)
	leverage := mulBig(sumX, ann)

	d := new(big.Int).Set(sumX)
	for i := 0; i < maxIterations; i++ {
		dProd := new(big.Int).Set(d)
		for _, x := range xs {
			if x.Sign() == 0 {
				return nil, ammtypes.ErrInvariantCalc.Wrap("zero balance in invariant")
			}
			dProd.Mul(dProd, d)
			dProd.Quo(dProd, mulBig(x, big.NewInt(n)))
		}
		dPrev := new(big.Int).Set(d)

		numerator := mulBig(dPrev, new(big.Int).Add(mulBig(dProd, big.NewInt(n)), leverage))
		denominator := new(big.Int).Add(
			mulBig(dPrev, new(big.Int).Sub(ann, bigOne)),
			mulBig(dProd, big.NewInt(n+1)),
		)
		d = numerator.Quo(numerator, denominator)

		if absDiffBig(d, dPrev).Cmp(bigOne) <= 0 {
			return d, nil
		}
	}
	return nil, ammtypes.ErrInvariantCalc.Wrap("invariant did not converge")
}

// computeYRaw solves the invariant for the balance at indexY, given the
// updated balance xNew at indexX and the other balances unchanged.
func computeYRaw(amp uint64, xNew *big.Int, xs []*big.Int, indexX, indexY int) (*big.Int, error) {
	n := int64(len(xs))
	nPowN := new(big.Int).Exp(big.NewInt(n), big.NewInt(n), nil)
	ann := mulBig(new(big.Int).SetUint64(amp), nPowN)

	d, err := computeDRaw(amp, xs)
	if err != nil {
		return nil, err
	}

	// Solve y^2 + by = c by Newton iteration, where
	//   c = D^(n+1) / (n^(2n) * prod' * A) and b = s' + D/ann.
	if xNew.Sign() == 0 {
		return nil, ammtypes.ErrSwapOutCalc.Wrap("zero input balance")
	}
	sum := new(big.Int).Set(xNew)
	c := quoBig(mulBig(d, d), xNew)
	for idx, x := range xs {
		if idx == indexX || idx == indexY {
			continue
		}
		if x.Sign() == 0 {
			return nil, ammtypes.ErrSwapOutCalc.Wrap("zero balance in invariant")
		}
		sum.Add(sum, x)
		c.Mul(c, d)
		c.Quo(c, x)
	}
	c.Mul(c, d)
	c.Quo(c, mulBig(ann, nPowN))
	b := new(big.Int).Add(quoBig(d, ann), sum)

	y := new(big.Int).Set(d)
	for i := 0; i < maxIterations; i++ {
		yPrev := new(big.Int).Set(y)
		numerator := new(big.Int).Add(mulBig(y, y), c)
		denominator := new(big.Int).Sub(new(big.Int).Add(mulBig(y, big.NewInt(2)), b), d)
		if denominator.Sign() <= 0 {
			return nil, ammtypes.ErrSwapOutCalc.Wrap("degenerate denominator")
		}
		y = numerator.Quo(numerator, denominator)
		if absDiffBig(y, yPrev).Cmp(bigOne) <= 0 {
			return y, nil
		}
	}
	return nil, ammtypes.ErrSwapOutCalc.Wrap("output balance did not converge")
}

// ComputeD returns the invariant for the given comparable balances.
func (s *StableSwap) ComputeD(cAmounts []math.Int) (math.Int, error) {
	d, err := computeDRaw(s.ComputeAmpFactor(), s.ratedAmounts(cAmounts))
	if err != nil {
		return math.Int{}, err
	}
	return toInt(d)
}

// SwapTo prices an exact-in swap. The returned amounts are comparable units;
// the destination balance already excludes both the user's output and the
// admin fee (the caller re-adds the admin fee when converting it to shares).
func (s *StableSwap) SwapTo(indexIn int, cAmountIn math.Int, indexOut int, cAmounts []math.Int, fees Fees) (SwapResult, error) {
	amp := s.ComputeAmpFactor()
	rated := s.ratedAmounts(cAmounts)
	ratedIn := s.applyRate(cAmountIn.BigInt(), indexIn)

	xNew := new(big.Int).Add(rated[indexIn], ratedIn)
	y, err := computeYRaw(amp, xNew, rated, indexIn, indexOut)
	if err != nil {
		return SwapResult{}, err
	}

	// The -1 biases rounding against the swapper; removing it lets truncation
	// drain the pool one unit at a time.
	dy := new(big.Int).Sub(rated[indexOut], y)
	dy.Sub(dy, bigOne)
	if dy.Sign() <= 0 {
		return SwapResult{}, ammtypes.ErrSwapOutCalc.Wrap("swap output is zero")
	}

	tradeFee := fees.tradeFee(dy)
	adminFee := fees.adminTradeFee(tradeFee)
	amountSwapped := new(big.Int).Sub(dy, tradeFee)

	outSwapped := s.unrate(amountSwapped, indexOut)
	outAdminFee := s.unrate(adminFee, indexOut)
	outFee := s.unrate(tradeFee, indexOut)

	newSource, err := toInt(new(big.Int).Add(cAmounts[indexIn].BigInt(), cAmountIn.BigInt()))
	if err != nil {
		return SwapResult{}, ammtypes.ErrSwapOutCalc.Wrap(err.Error())
	}
	newDestinationRaw := new(big.Int).Sub(cAmounts[indexOut].BigInt(), outSwapped)
	newDestinationRaw.Sub(newDestinationRaw, outAdminFee)
	newDestination, err := toInt(newDestinationRaw)
	if err != nil {
		return SwapResult{}, ammtypes.ErrSwapOutCalc.Wrap(err.Error())
	}

	swapped, err := toInt(outSwapped)
	if err != nil {
		return SwapResult{}, ammtypes.ErrSwapOutCalc.Wrap(err.Error())
	}
	admin, err := toInt(outAdminFee)
	if err != nil {
		return SwapResult{}, ammtypes.ErrSwapOutCalc.Wrap(err.Error())
	}
	fee, err := toInt(outFee)
	if err != nil {
		return SwapResult{}, ammtypes.ErrSwapOutCalc.Wrap(err.Error())
	}

	return SwapResult{
		NewSourceAmount:      newSource,
		NewDestinationAmount: newDestination,
		AmountSwapped:        swapped,
		AdminFee:             admin,
		Fee:                  fee,
	}, nil
}

// SwapByOutput prices an exact-out swap, returning the required comparable
// input, rounded up against the swapper.
func (s *StableSwap) SwapByOutput(indexIn int, cAmountOut math.Int, indexOut int, cAmounts []math.Int, fees Fees) (SwapResult, error) {
	amp := s.ComputeAmpFactor()
	rated := s.ratedAmounts(cAmounts)
	ratedOutUser := s.applyRate(cAmountOut.BigInt(), indexOut)

	// Gross the user's output back up to the pre-fee curve delta, rounding up.
	feeKeep := big.NewInt(int64(ammtypes.FeeDivisor - fees.TradeFeeBps))
	dy := mulBig(ratedOutUser, big.NewInt(int64(ammtypes.FeeDivisor)))
	dy.Add(dy, new(big.Int).Sub(feeKeep, bigOne))
	dy.Quo(dy, feeKeep)
	tradeFee := new(big.Int).Sub(dy, ratedOutUser)
	adminFee := fees.adminTradeFee(tradeFee)

	// Mirror SwapTo's -1 protection on the curve delta.
	outNew := new(big.Int).Sub(rated[indexOut], new(big.Int).Add(dy, bigOne))
	if outNew.Sign() <= 0 {
		return SwapResult{}, ammtypes.ErrSwapOutCalc.Wrap("requested output drains the reserve")
	}
	yIn, err := computeYRaw(amp, outNew, rated, indexOut, indexIn)
	if err != nil {
		return SwapResult{}, err
	}
	amountInRated := new(big.Int).Sub(yIn, rated[indexIn])
	if amountInRated.Sign() <= 0 {
		return SwapResult{}, ammtypes.ErrSwapOutCalc.Wrap("computed input is zero")
	}

	// Round the comparable input up against the swapper.
	rate := s.rates[indexIn].BigInt()
	amountIn := mulBig(amountInRated, bigPrecision)
	amountIn.Add(amountIn, new(big.Int).Sub(rate, bigOne))
	amountIn.Quo(amountIn, rate)

	outAdminFee := s.unrate(adminFee, indexOut)
	outFee := s.unrate(tradeFee, indexOut)

	newSource, err := toInt(new(big.Int).Add(cAmounts[indexIn].BigInt(), amountIn))
	if err != nil {
		return SwapResult{}, ammtypes.ErrSwapOutCalc.Wrap(err.Error())
	}
	newDestinationRaw := new(big.Int).Sub(cAmounts[indexOut].BigInt(), cAmountOut.BigInt())
	newDestinationRaw.Sub(newDestinationRaw, outAdminFee)
	newDestination, err := toInt(newDestinationRaw)
	if err != nil {
		return SwapResult{}, ammtypes.ErrSwapOutCalc.Wrap(err.Error())
	}
	in, err := toInt(amountIn)
	if err != nil {
		return SwapResult{}, ammtypes.ErrSwapOutCalc.Wrap(err.Error())
	}
	admin, err := toInt(outAdminFee)
	if err != nil {
		return SwapResult{}, ammtypes.ErrSwapOutCalc.Wrap(err.Error())
	}
	fee, err := toInt(outFee)
	if err != nil {
		return SwapResult{}, ammtypes.ErrSwapOutCalc.Wrap(err.Error())
	}

	return SwapResult{
		NewSourceAmount:      newSource,
		NewDestinationAmount: newDestination,
		AmountSwapped:        in,
		AdminFee:             admin,
		Fee:                  fee,
	}, nil
}

// ComputeLPAmountForDeposit computes minted shares and the fee part (shares
// that would have been minted absent the imbalance fee) for a deposit.
func (s *StableSwap) ComputeLPAmountForDeposit(depositC, oldC []math.Int, supply math.Int, fees Fees) (math.Int, math.Int, error) {
	amp := s.ComputeAmpFactor()
	oldRated := s.ratedAmounts(oldC)

	d0, err := computeDRaw(amp, oldRated)
	if err != nil {
		return math.Int{}, math.Int{}, err
	}
	if d0.Sign() == 0 {
		return math.Int{}, math.Int{}, ammtypes.ErrLPShareCalc.Wrap("pool with shares but zero invariant")
	}

	n := len(oldC)
	newRated := make([]*big.Int, n)
	for i := range newRated {
		newRated[i] = new(big.Int).Add(oldRated[i], s.applyRate(depositC[i].BigInt(), i))
	}
	d1, err := computeDRaw(amp, newRated)
	if err != nil {
		return math.Int{}, math.Int{}, err
	}
	if d1.Cmp(d0) <= 0 {
		return math.Int{}, math.Int{}, ammtypes.ErrLPShareCalc.Wrap("deposit does not grow the invariant")
	}

	for i := range newRated {
		ideal := quoBig(mulBig(d1, oldRated[i]), d0)
		diff := absDiffBig(newRated[i], ideal)
		newRated[i].Sub(newRated[i], fees.normalizedTradeFee(n, diff))
	}
	d2, err := computeDRaw(amp, newRated)
	if err != nil {
		return math.Int{}, math.Int{}, err
	}

	mint := quoBig(mulBig(supply.BigInt(), new(big.Int).Sub(d2, d0)), d0)
	feePart := quoBig(mulBig(supply.BigInt(), new(big.Int).Sub(d1, d2)), d0)

	mintInt, err := toInt(mint)
	if err != nil {
		return math.Int{}, math.Int{}, ammtypes.ErrLPShareCalc.Wrap(err.Error())
	}
	feeInt, err := toInt(feePart)
	if err != nil {
		return math.Int{}, math.Int{}, ammtypes.ErrLPShareCalc.Wrap(err.Error())
	}
	return mintInt, feeInt, nil
}

// ComputeLPAmountForWithdraw computes burned shares and the fee part for an
// imbalanced withdrawal of the given comparable amounts.
func (s *StableSwap) ComputeLPAmountForWithdraw(withdrawC, oldC []math.Int, supply math.Int, fees Fees) (math.Int, math.Int, error) {
	amp := s.ComputeAmpFactor()
	oldRated := s.ratedAmounts(oldC)

	d0, err := computeDRaw(amp, oldRated)
	if err != nil {
		return math.Int{}, math.Int{}, err
	}
	if d0.Sign() == 0 {
		return math.Int{}, math.Int{}, ammtypes.ErrLPShareCalc.Wrap("pool with shares but zero invariant")
	}

	n := len(oldC)
	newRated := make([]*big.Int, n)
	for i := range newRated {
		out := s.applyRate(withdrawC[i].BigInt(), i)
		if oldRated[i].Cmp(out) < 0 {
			return math.Int{}, math.Int{}, ammtypes.ErrNotEnoughTokens.Wrapf("withdraw exceeds reserve at index %d", i)
		}
		newRated[i] = new(big.Int).Sub(oldRated[i], out)
	}
	d1, err := computeDRaw(amp, newRated)
	if err != nil {
		return math.Int{}, math.Int{}, err
	}
	if d1.Cmp(d0) >= 0 {
		return math.Int{}, math.Int{}, ammtypes.ErrLPShareCalc.Wrap("withdraw does not shrink the invariant")
	}

	for i := range newRated {
		ideal := quoBig(mulBig(d1, oldRated[i]), d0)
		diff := absDiffBig(ideal, newRated[i])
		newRated[i].Sub(newRated[i], fees.normalizedTradeFee(n, diff))
		if newRated[i].Sign() < 0 {
			return math.Int{}, math.Int{}, ammtypes.ErrLPShareCalc.Wrap("fee exceeds remaining balance")
		}
	}
	d2, err := computeDRaw(amp, newRated)
	if err != nil {
		return math.Int{}, math.Int{}, err
	}

	burn := quoBig(mulBig(supply.BigInt(), new(big.Int).Sub(d0, d2)), d0)
	diffShares := quoBig(mulBig(supply.BigInt(), new(big.Int).Sub(d0, d1)), d0)
	feePart := new(big.Int).Sub(burn, diffShares)

	burnInt, err := toInt(burn)
	if err != nil {
		return math.Int{}, math.Int{}, ammtypes.ErrLPShareCalc.Wrap(err.Error())
	}
	feeInt, err := toInt(feePart)
	if err != nil {
		return math.Int{}, math.Int{}, ammtypes.ErrLPShareCalc.Wrap(err.Error())
	}
	return burnInt, feeInt, nil
}

// onesRates returns a unit rate vector for plain stable pools.
func onesRates(n int) []math.Int {
	out := make([]math.Int, n)
	for i := range out {
		out[i] = ammtypes.Precision
	}
	return out
}
