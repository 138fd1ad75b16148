// Package discovery announces and finds webli servers on the local network
// using multicast DNS.
//
// A running server publishes an "_https._tcp" record with Advertise. The TXT
// data always carries "server=webli" so that Scanner can tell webli servers
// apart from other HTTPS services on the segment.
//
//	adv, err := discovery.Advertise(discovery.AdvertiseConfig{
//	    Instance: "webli",
//	    Port:     8443,
//	})
//	if err != nil {
//	    return err
//	}
//	defer adv.Shutdown()
//
//	instances, err := discovery.NewScanner().Scan(ctx)
//
// Multicast must be allowed on the interface (UDP port 5353).
package discovery
