// Package devmac implements the LoRaWAN 1.0/1.1 wire formats used by a
// class-A end-device: the PHY payload codec (join-request, join-accept,
// data up/down) and the MAC command codec. It implements the
// encoding.BinaryMarshaler and encoding.BinaryUnmarshaler interfaces.
//
// The scheduler that drives these frames through a radio on a
// duty-cycled schedule lives in the mac sub-package. Cryptographic
// operations (key derivation, MIC, encryption) live in the crypto
// sub-package. Regional channel plans live in band, airtime
// calculation in airtime.
package devmac
