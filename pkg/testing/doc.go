// Package testing provides a harness for running an in-process remoted
// daemon in Go tests.
//
// A Daemon starts a real HTTP listener on a probed port, registers the
// providers the test asks for, and stops automatically when the test
// completes. Tests can bind their own operations to stand in for host
// functionality:
//
//	func TestMyTool(t *testing.T) {
//	    d := remotedtest.New(t)
//	    d.Handle(router.VerbGet, "/host/ping", func(router.Request) router.Response {
//	        return router.OK(map[string]any{"pong": true})
//	    })
//	    url := d.Start()
//
//	    // Point the code under test at url and assert on its behavior.
//	}
//
// The batch provider is always registered, so sequences with back-references
// work against the harness exactly as they do against a real daemon.
package testing
