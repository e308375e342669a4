/*
Copyright 2023 Red Hat Inc.

Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in
compliance with the License. You may obtain a copy of the License at

  http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software distributed under the License is
distributed on an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or
implied. See the License for the specific language governing permissions and limitations under the
License.
*/

package testing

import (
	"log"
	"net/http"
	"net/url"

	"github.com/onsi/gomega/ghttp"

	. "github.com/onsi/ginkgo/v2/dsl/core"
	. "github.com/onsi/gomega"
)

// MakeTCPServer creates a test server that listens in a TCP socket and configured so that it
// sends log messages to the Ginkgo writer. It is used to simulate the object storage service and
// the metrics gateway.
func MakeTCPServer() *ghttp.Server {
	server := ghttp.NewUnstartedServer()
	server.Writer = GinkgoWriter
	server.HTTPTestServer.Config.ErrorLog = log.New(GinkgoWriter, "", log.LstdFlags)
	server.HTTPTestServer.Start()
	return server
}

// ServerHost returns the host and port of the server, without the scheme, as expected by the
// object storage client.
func ServerHost(server *ghttp.Server) string {
	address, err := url.Parse(server.URL())
	Expect(err).ToNot(HaveOccurred())
	return address.Host
}

// RespondWithContent responds with the given status code, content type and body.
func RespondWithContent(status int, contentType, body string) http.HandlerFunc {
	return ghttp.RespondWith(
		status,
		body,
		http.Header{
			"Content-Type": []string{
				contentType,
			},
		},
	)
}

// RespondWithETag responds with the given status code and the entity tag header that the object
// storage service returns when an object is created.
func RespondWithETag(status int, etag string) http.HandlerFunc {
	return ghttp.RespondWith(
		status,
		"",
		http.Header{
			"ETag": []string{
				`"` + etag + `"`,
			},
		},
	)
}
