// Package discovery advertises and finds canplot API servers over mDNS.
//
// A server started with --advertise registers itself as a "_canplot._tcp"
// service in the "local." domain, with TXT records carrying its version and
// API path. The scan command browses for the same service type.
//
// # Usage Example
//
//	// Advertise a server listening on :8080
//	advert, err := discovery.Advertise("", 8080, []string{"version=1.0.0", "path=/api"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer advert.Shutdown()
//
//	// Find peers
//	peers, err := discovery.Scan(context.Background(), 3*time.Second)
//	for _, p := range peers {
//	    fmt.Println(p, p.BaseURL())
//	}
package discovery
