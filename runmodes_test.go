package main

import "testing"

func TestClassifyCallAndReturn(t *testing.T) {
	isCall, isRet, isUncond, isCond := classify("CALL 1234H")
	if !isCall || isRet || isUncond || isCond {
		t.Fatalf("CALL 1234H: got call=%v ret=%v uncond=%v cond=%v", isCall, isRet, isUncond, isCond)
	}

	isCall, isRet, isUncond, isCond = classify("CALL NZ, $1234")
	if !isCall || !isCond {
		t.Fatalf("CALL NZ, $1234: got call=%v cond=%v, want both true", isCall, isCond)
	}

	for _, m := range []string{"RET", "RETI", "RETN"} {
		_, isRet, _, _ := classify(m)
		if !isRet {
			t.Fatalf("%s: isRet = false, want true", m)
		}
	}
}

func TestClassifyJumpsAndBranches(t *testing.T) {
	cases := []struct {
		mnemonic             string
		uncond, cond, isCall bool
	}{
		{"JP $1234", true, false, false},
		{"JP NZ, $1234", false, true, false},
		{"JP (HL)", true, false, false},
		{"JR $0005", true, false, false},
		{"JR Z, $0005", false, true, false},
		{"DJNZ $0005", false, true, false},
	}
	for _, c := range cases {
		isCall, _, isUncond, isCond := classify(c.mnemonic)
		if isUncond != c.uncond || isCond != c.cond || isCall != c.isCall {
			t.Fatalf("classify(%q) = call=%v uncond=%v cond=%v, want call=%v uncond=%v cond=%v",
				c.mnemonic, isCall, isUncond, isCond, c.isCall, c.uncond, c.cond)
		}
	}
}

func TestClassifyPlainInstructionIsNeither(t *testing.T) {
	isCall, isRet, isUncond, isCond := classify("LD A,42H")
	if isCall || isRet || isUncond || isCond {
		t.Fatalf("LD A,42H misclassified as call=%v ret=%v uncond=%v cond=%v", isCall, isRet, isUncond, isCond)
	}
}

func TestOverlayEnabledTracksMode(t *testing.T) {
	r := &Runner{mode: ModeRun}
	if r.OverlayEnabled() {
		t.Fatal("overlay should be hidden while free-running")
	}
	r.mode = ModeDebug
	if !r.OverlayEnabled() {
		t.Fatal("overlay should be shown outside ModeRun")
	}
}

func TestRegisterByNameKnownAndUnknown(t *testing.T) {
	cpu := &CPU_Z80{A: 0x42, PC: 0x1234}
	if v, ok := registerByName(cpu, "a"); !ok || v != 0x42 {
		t.Fatalf("registerByName(a) = %d,%v want 0x42,true", v, ok)
	}
	if v, ok := registerByName(cpu, "PC"); !ok || v != 0x1234 {
		t.Fatalf("registerByName(PC) = %04X,%v want 1234,true", v, ok)
	}
	if _, ok := registerByName(cpu, "ZZ"); ok {
		t.Fatal("registerByName(ZZ) should report not found")
	}
}
