package restyutil

import (
	"fmt"
	"sync/atomic"

	"github.com/go-resty/resty/v2"
)

type InstrumentOutput interface {
	Write(id string, contents string) error
}

// DumpExchanges writes every completed request/response pair of the client to output,
// file names are the order in which the responses came back. Failed writes are
// passed to onError which may be nil.
func DumpExchanges(client *resty.Client, output InstrumentOutput, onError func(error)) {
	var idcounter uint64
	client.OnAfterResponse(func(_ *resty.Client, res *resty.Response) error {
		id := atomic.AddUint64(&idcounter, 1)
		err := output.Write(fmt.Sprintf("%04d.txt", id), formatHttpMessage(res))
		if err != nil && onError != nil {
			onError(err)
		}
		return nil
	})
}
