package types

import (
	"cosmossdk.io/math"
)

// SwapAction is an exact-in swap step. A nil AmountIn chains from the
// previous action's output.
type SwapAction struct {
	PoolId       uint64    `json:"pool_id"`
	TokenIn      string    `json:"token_in"`
	AmountIn     *math.Int `json:"amount_in,omitempty"`
	TokenOut     string    `json:"token_out"`
	MinAmountOut math.Int  `json:"min_amount_out"`
}

// SwapByOutputAction is an exact-out swap step. A nil AmountOut chains from
// the previous action's computed input.
type SwapByOutputAction struct {
	PoolId      uint64    `json:"pool_id"`
	TokenIn     string    `json:"token_in"`
	AmountOut   *math.Int `json:"amount_out,omitempty"`
	TokenOut    string    `json:"token_out"`
	MaxAmountIn *math.Int `json:"max_amount_in,omitempty"`
}

// Action is the tagged union the executor runs. Exactly one field is set.
type Action struct {
	Swap         *SwapAction         `json:"swap,omitempty"`
	SwapByOutput *SwapByOutputAction `json:"swap_by_output,omitempty"`
}

// PoolID returns the pool the action targets.
func (a *Action) PoolID() uint64 {
	if a.Swap != nil {
		return a.Swap.PoolId
	}
	return a.SwapByOutput.PoolId
}

// TokenIn returns the action's input token.
func (a *Action) TokenIn() string {
	if a.Swap != nil {
		return a.Swap.TokenIn
	}
	return a.SwapByOutput.TokenIn
}

// TokenOut returns the action's output token.
func (a *Action) TokenOut() string {
	if a.Swap != nil {
		return a.Swap.TokenOut
	}
	return a.SwapByOutput.TokenOut
}

// AmountOut returns the explicit output of a swap-by-output action, if any.
func (a *Action) AmountOut() *math.Int {
	if a.SwapByOutput != nil {
		return a.SwapByOutput.AmountOut
	}
	return nil
}

// Tokens returns both tokens touched by the action.
func (a *Action) Tokens() []string {
	return []string{a.TokenIn(), a.TokenOut()}
}

// Validate checks a single action.
func (a *Action) Validate() error {
	set := 0
	if a.Swap != nil {
		set++
	}
	if a.SwapByOutput != nil {
		set++
	}
	if set != 1 {
		return ErrInvalidParams.Wrap("action must be exactly one of swap, swap_by_output")
	}
	if a.TokenIn() == a.TokenOut() {
		return ErrSwapDupTokens.Wrapf("token %s", a.TokenIn())
	}
	return nil
}

// ValidateActions checks list-level rules: at least one action, no variant
// mixing, every action well-formed.
func ValidateActions(actions []Action) error {
	if len(actions) == 0 {
		return ErrAtLeastOneSwap
	}
	isSwap := actions[0].Swap != nil
	for i := range actions {
		if err := actions[i].Validate(); err != nil {
			return err
		}
		if (actions[i].Swap != nil) != isSwap {
			return ErrInvalidParams.Wrap("cannot mix swap and swap_by_output actions")
		}
	}
	return nil
}

// TokensInActions returns the distinct tokens referenced by the list.
func TokensInActions(actions []Action) []string {
	seen := make(map[string]struct{})
	var out []string
	for i := range actions {
		for _, token := range actions[i].Tokens() {
			if _, ok := seen[token]; !ok {
				seen[token] = struct{}{}
				out = append(out, token)
			}
		}
	}
	return out
}
