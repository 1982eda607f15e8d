// Package server is the HTTP front-end of an application process.
//
// A Server turns a declarative configuration into a running listener:
//   - the listen port is derived from a base port and, in cluster mode, the
//     worker index at the end of the server id ("3000++" + "connector-2" = 3002)
//   - TLS key and certificate are read from the application base directory
//     when SSL is enabled
//   - the request pipeline is composed in a fixed order: before-filters,
//     the default health route, route modules, after-filters
//
// Route modules are compiled-in factories registered in a RouteTable. Which
// of them are mounted is decided by descriptor files found in the route
// directory of the server type:
//
//	<base>/app/servers/<serverType>/routers/*.yaml
//
// Each descriptor names a factory (defaulting to the file stem). Descriptors
// are visited in file name order, but route modules must not rely on their
// relative mount order.
//
// Lifecycle:
//
//	Stopped -> Starting -> Running -> Stopping -> Stopped
//
// Start and Stop report completion through callbacks that always run on their
// own goroutine, never inline.
package server
