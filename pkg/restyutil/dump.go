package restyutil

import (
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/go-resty/resty/v2"
)

// Dump writes every response the client receives, together with its request,
// to output. Ids are "<sequence>-<method>-<path>.txt".
func Dump(client *resty.Client, output Output) {
	var idcounter uint64
	client.OnAfterResponse(func(_ *resty.Client, res *resty.Response) error {
		id := atomic.AddUint64(&idcounter, 1)
		output.Write(messageId(id, res), formatHttpMessage(res))
		return nil
	})
}

func messageId(n uint64, res *resty.Response) string {
	path := "root"
	if res.Request.RawRequest != nil {
		trimmed := strings.Trim(res.Request.RawRequest.URL.Path, "/")
		if trimmed != "" {
			path = strings.ReplaceAll(trimmed, "/", "_")
		}
	}
	return fmt.Sprintf("%04d-%s-%s.txt", n, res.Request.Method, path)
}
