package types

// Reserved addresses sit at well-known 26-byte bodies, so every node
// derives the same bytes without a genesis allocation step.
var (
	SystemPackage   = NewAddress(AddressPackage, [26]byte{0x01})
	SystemComponent = NewAddress(AddressComponent, [26]byte{0x01})
	AccountPackage  = NewAddress(AddressPackage, [26]byte{0x02})
	NativeToken     = NewAddress(AddressResourceDef, [26]byte{0x01})
	ECDSAToken      = NewAddress(AddressResourceDef, [26]byte{0x02})
)
