package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/ardanlabs/landledger/foundation/blockchain/database"
	"github.com/pterm/pterm"
)

var client = http.Client{Timeout: time.Minute}

type errorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

type submitted struct {
	Status    string `json:"status"`
	Key       string `json:"key"`
	NextBlock uint64 `json:"next_block"`
}

// submit signs the payload with the wallet key and sends it to the node.
func submit(recipient string, payload database.Payload) error {
	privateKey, address, err := loadKey()
	if err != nil {
		return err
	}

	stx, err := database.NewTx(address, recipient, payload).Sign(privateKey)
	if err != nil {
		return err
	}

	var resp submitted
	if err := send(http.MethodPost, "/v1/tx/submit", stx, &resp); err != nil {
		return err
	}

	pterm.Success.Printfln("%s %s: tx[%s] next-blk[%d]", payload.TxType(), resp.Status, resp.Key, resp.NextBlock)
	return nil
}

// send calls the node api and decodes the response into dataRecv.
func send(method string, path string, dataSend any, dataRecv any) error {
	var body bytes.Buffer
	if dataSend != nil {
		if err := json.NewEncoder(&body).Encode(dataSend); err != nil {
			return err
		}
	}

	req, err := http.NewRequest(method, nodeURL+path, &body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var er errorResponse
		if err := json.NewDecoder(resp.Body).Decode(&er); err != nil {
			return fmt.Errorf("status %d", resp.StatusCode)
		}
		if len(er.Fields) > 0 {
			return fmt.Errorf("status %d: %s: %v", resp.StatusCode, er.Error, er.Fields)
		}
		return fmt.Errorf("status %d: %s", resp.StatusCode, er.Error)
	}

	if dataRecv != nil {
		return json.NewDecoder(resp.Body).Decode(dataRecv)
	}

	return nil
}
