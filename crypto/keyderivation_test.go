package crypto

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/dragino-lora/devmac"
)

func TestDeriveSessionKeys10(t *testing.T) {
	Convey("Given a zero NwkKey and join parameters", t, func() {
		var nwkKey devmac.AES128Key
		netID := devmac.NetID{1, 2, 3}
		joinNonce := devmac.JoinNonce(0x010203)
		devNonce := devmac.DevNonce(42)

		m := Default{}

		Convey("Then derivation is deterministic", func() {
			a, err := m.DeriveSessionKeys10(nwkKey, netID, joinNonce, devNonce)
			So(err, ShouldBeNil)
			b, err := m.DeriveSessionKeys10(nwkKey, netID, joinNonce, devNonce)
			So(err, ShouldBeNil)
			So(a, ShouldResemble, b)
		})

		Convey("Then FNwkSIntKey, SNwkSIntKey and NwkSEncKey collapse to NwkSKey and AppSKey differs", func() {
			keys, err := m.DeriveSessionKeys10(nwkKey, netID, joinNonce, devNonce)
			So(err, ShouldBeNil)
			So(keys.FNwkSIntKey, ShouldResemble, keys.SNwkSIntKey)
			So(keys.FNwkSIntKey, ShouldResemble, keys.NwkSEncKey)
			So(keys.AppSKey, ShouldNotResemble, keys.FNwkSIntKey)
		})
	})
}

func TestDeriveSessionKeys11(t *testing.T) {
	Convey("Given distinct NwkKey and AppKey and join parameters", t, func() {
		nwkKey := devmac.AES128Key{1}
		appKey := devmac.AES128Key{2}
		joinEUI := devmac.EUI64{0, 0, 0, 0, 0, 0, 0, 2}
		joinNonce := devmac.JoinNonce(7)
		devNonce := devmac.DevNonce(99)

		m := Default{}
		keys, err := m.DeriveSessionKeys11(nwkKey, appKey, joinEUI, joinNonce, devNonce)
		So(err, ShouldBeNil)

		Convey("Then all four session keys are pairwise distinct", func() {
			all := []devmac.AES128Key{keys.FNwkSIntKey, keys.AppSKey, keys.SNwkSIntKey, keys.NwkSEncKey}
			for i := range all {
				for j := range all {
					if i == j {
						continue
					}
					So(all[i], ShouldNotResemble, all[j])
				}
			}
		})
	})
}

func TestDeriveJoinKeys11(t *testing.T) {
	Convey("Given a NwkKey and DevEUI", t, func() {
		nwkKey := devmac.AES128Key{9}
		devEUI := devmac.EUI64{0, 0, 0, 0, 0, 0, 0, 1}

		m := Default{}
		keys, err := m.DeriveJoinKeys11(nwkKey, devEUI)
		So(err, ShouldBeNil)

		Convey("Then JSEncKey and JSIntKey are distinct", func() {
			So(keys.JSEncKey, ShouldNotResemble, keys.JSIntKey)
		})
	})
}
