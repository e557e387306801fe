package compiler

const errorFlag = uint64(1) << 63

// EncodeError packs an error-point index into a raw return value with the
// error flag set.
func EncodeError(index int) uint64 {
	return errorFlag | uint64(index)
}

// DecodeResult splits a raw return value into either a successful value or
// an error-point index, depending on the flag bit.
func DecodeResult(raw uint64) (value int64, errorIndex int, isError bool) {
	if raw&errorFlag != 0 {
		return 0, int(raw &^ errorFlag), true
	}
	return int64(raw), 0, false
}
