package midi

// Controller numbers the compiler understands. Anything else is dropped.
const (
	CCBankSelectMSB uint8 = 0
	CCModulation    uint8 = 1  // vibrato depth
	CCBreath        uint8 = 2  // vibrato rate
	CCVolume        uint8 = 7
	CCPan           uint8 = 10
	CCBankSelectLSB uint8 = 32
	CCReverb        uint8 = 91
	CCTremolo       uint8 = 92 // tremolo depth
	CCChorus        uint8 = 93 // tremolo rate
)

// IsBankSelect reports whether cc is either bank select variant.
func IsBankSelect(cc uint8) bool {
	return cc == CCBankSelectMSB || cc == CCBankSelectLSB
}
