package wallet

import (
	"fmt"
	"math"
)

// Entry is one labelled balance observation in the wallet history
type Entry struct {
	Label   string  `json:"label"`
	Balance float64 `json:"balance"`
}

// VirtualWallet tracks simulated equity through a backtest
type VirtualWallet struct {
	StartingBalance float64
	Label           string
	Balance         float64
	History         []Entry
}

// New creates a wallet with the given starting balance. The currency label
// defaults to USD.
func New(startingBalance float64, label string) *VirtualWallet {
	if label == "" {
		label = "USD"
	}
	w := &VirtualWallet{
		StartingBalance: startingBalance,
		Label:           label,
		Balance:         startingBalance,
	}
	w.History = append(w.History, Entry{Label: "initial", Balance: w.Balance})
	return w
}

// ApplyReturn applies a percentage return and records the new balance
func (w *VirtualWallet) ApplyReturn(returnPct float64, timestamp string) float64 {
	w.Balance *= 1 + returnPct
	label := timestamp
	if label == "" {
		label = fmt.Sprintf("step-%d", len(w.History))
	}
	w.History = append(w.History, Entry{Label: label, Balance: w.Balance})
	return w.Balance
}

// Deposit increases the balance by a fixed amount
func (w *VirtualWallet) Deposit(amount float64, timestamp string) float64 {
	w.Balance += amount
	label := timestamp
	if label == "" {
		label = fmt.Sprintf("deposit-%d", len(w.History))
	}
	w.History = append(w.History, Entry{Label: label, Balance: w.Balance})
	return w.Balance
}

// Withdraw decreases the balance by a fixed amount
func (w *VirtualWallet) Withdraw(amount float64, timestamp string) float64 {
	w.Balance -= amount
	label := timestamp
	if label == "" {
		label = fmt.Sprintf("withdraw-%d", len(w.History))
	}
	w.History = append(w.History, Entry{Label: label, Balance: w.Balance})
	return w.Balance
}

// Summary returns a human readable description of wallet performance
func (w *VirtualWallet) Summary() string {
	change := w.Balance - w.StartingBalance
	changePct := 0.0
	if w.StartingBalance != 0 {
		changePct = change / w.StartingBalance * 100
	}
	direction := "gained"
	if change < 0 {
		direction = "lost"
	}
	return fmt.Sprintf("Virtual wallet %s %.2f %s (%+.2f%%) and now holds %.2f %s.",
		direction, math.Abs(change), w.Label, changePct, w.Balance, w.Label)
}
