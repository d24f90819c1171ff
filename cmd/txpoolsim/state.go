package main

import (
	"context"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

// memWorldState is the confirmed account state of a simulation.
type memWorldState struct {
	mu       sync.RWMutex
	nonces   map[common.Address]uint64
	balances map[common.Address]*big.Int
}

func newMemWorldState() *memWorldState {
	return &memWorldState{
		nonces:   make(map[common.Address]uint64),
		balances: make(map[common.Address]*big.Int),
	}
}

func (s *memWorldState) ConfirmedNonce(_ context.Context, addr common.Address) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nonces[addr], nil
}

func (s *memWorldState) Balance(_ context.Context, addr common.Address) (*big.Int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if balance, ok := s.balances[addr]; ok {
		return new(big.Int).Set(balance), nil
	}
	return new(big.Int), nil
}

func (s *memWorldState) setAccount(addr common.Address, nonce uint64, balance *big.Int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nonces[addr] = nonce
	s.balances[addr] = new(big.Int).Set(balance)
}

// charge applies an included transaction: bumps the nonce and debits fee
// and value. The balance never goes below zero.
func (s *memWorldState) charge(addr common.Address, fee, value *big.Int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nonces[addr]++
	balance, ok := s.balances[addr]
	if !ok {
		balance = new(big.Int)
	}
	balance = new(big.Int).Sub(balance, fee)
	balance.Sub(balance, value)
	if balance.Sign() < 0 {
		balance.SetUint64(0)
	}
	s.balances[addr] = balance
}
