// Package client implements the request pipeline between the taskboard CLI
// and the remote service.
//
// Every outbound call goes through Pipeline.Do, which attaches the stored
// bearer credential, and on a 401 refreshes the credential pair and retries
// the original call at most once. When the session cannot be recovered the
// stored credentials are cleared and the registered SessionLostFunc hooks
// run. The same protocol is available to gRPC side services through
// UnaryClientInterceptor and to SDK clients through TokenSource.
package client
