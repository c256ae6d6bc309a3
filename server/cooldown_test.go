package main

import "testing"

func TestCooldownBitset(t *testing.T) {
	var b cooldownBitset
	if b.isOnCooldown(10) || b.isOnCooldown(52000) {
		t.Fatalf("fresh bitset reports cooldown")
	}

	b.setCooldown(10)
	b.setCooldown(52000)

	if !b.isOnCooldown(10) || !b.isOnCooldown(52000) {
		t.Fatalf("set bits not observed")
	}
	if b.isOnCooldown(11) || b.isOnCooldown(52001) {
		t.Fatalf("neighboring bits observed as set")
	}
}

func TestCooldownClear(t *testing.T) {
	var b cooldownBitset
	b.setCooldown(77)
	b.clearCooldown(77)
	if b.isOnCooldown(77) {
		t.Fatalf("cleared bit still set")
	}
	// clearing an unset bit must not disturb neighbors
	b.setCooldown(78)
	b.clearCooldown(77)
	if !b.isOnCooldown(78) {
		t.Fatalf("neighbor bit lost on clear")
	}
}
