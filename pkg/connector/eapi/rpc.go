package eapi

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cast"

	"github.com/netapi-network/netapi/pkg/connector"
)

// NX-API reports a rejected command as invalid params
const nxosInvalidParams = -32602

type eosParams struct {
	Version int      `json:"version"`
	Cmds    []string `json:"cmds"`
	Format  string   `json:"format"`
}

type rpcRequest struct {
	JSONRPC string      `json:"jsonrpc"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params"`
	ID      interface{} `json:"id"`
}

type nxosParams struct {
	Cmd     string `json:"cmd"`
	Version int    `json:"version"`
}

func eosRequest(cmds []string, encoding string) ([]byte, error) {
	return json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		Method:  "runCmds",
		Params:  eosParams{Version: 1, Cmds: cmds, Format: encoding},
		ID:      requestID(),
	})
}

func nxosRequest(cmds []string, encoding string) ([]byte, error) {
	method := "cli"
	if encoding == "text" {
		method = "cli_ascii"
	}
	reqs := make([]rpcRequest, len(cmds))
	for i, cmd := range cmds {
		reqs[i] = rpcRequest{
			JSONRPC: "2.0",
			Method:  method,
			Params:  nxosParams{Cmd: cmd, Version: 1},
			ID:      i + 1,
		}
	}
	return json.Marshal(reqs)
}

// eosResponse maps a runCmds reply onto the submitted commands
func eosResponse(cmds []string, raw interface{}) (connector.Results, error) {
	resp, ok := connector.AsObject(raw)
	if !ok {
		return nil, fmt.Errorf("eapi: unexpected response %v", raw)
	}
	if e, ok := resp.Get("error"); ok && e != nil {
		return nil, eosError(cmds, e)
	}
	result, _ := resp.Get("result")
	list, ok := result.([]interface{})
	if !ok || len(list) != len(cmds) {
		return nil, fmt.Errorf("eapi: expected %d results, got %v", len(cmds), result)
	}
	out := make(connector.Results, len(cmds))
	for i, cmd := range cmds {
		out[i] = connector.Result{Command: cmd, Output: list[i]}
	}
	return out, nil
}

func eosError(cmds []string, raw interface{}) error {
	e, ok := connector.AsObject(raw)
	if !ok {
		return fmt.Errorf("eapi: malformed error %v", raw)
	}
	codeRaw, _ := e.Get("code")
	msgRaw, _ := e.Get("message")
	code := cast.ToInt(codeRaw)
	msg := cast.ToString(msgRaw)

	cmd := errorCommand(cmds, msg)
	if data, ok := e.Get("data"); ok {
		list, _ := data.([]interface{})
		for i, item := range list {
			obj, ok := connector.AsObject(item)
			if !ok {
				continue
			}
			if errs, ok := obj.Get("errors"); ok {
				if cmd == "" && i < len(cmds) {
					cmd = cmds[i]
				}
				if l, ok := errs.([]interface{}); ok && len(l) > 0 {
					msg = fmt.Sprintf("%s [%s]", msg, cast.ToString(l[0]))
				}
				break
			}
		}
	}
	return &connector.CommandError{Code: code, Command: cmd, Message: msg}
}

// nxosResponse maps a JSON-RPC batch reply onto the submitted commands
func nxosResponse(cmds []string, raw interface{}) (connector.Results, error) {
	var items []interface{}
	switch x := raw.(type) {
	case []interface{}:
		items = x
	default:
		items = []interface{}{x}
	}
	if len(items) != len(cmds) {
		return nil, fmt.Errorf("nxapi: expected %d replies, got %d", len(cmds), len(items))
	}

	out := make(connector.Results, len(cmds))
	for i, item := range items {
		reply, ok := connector.AsObject(item)
		if !ok {
			return nil, fmt.Errorf("nxapi: unexpected reply %v", item)
		}
		if e, ok := reply.Get("error"); ok && e != nil {
			return nil, nxosError(cmds[i], e)
		}
		out[i] = connector.Result{Command: cmds[i], Output: nxosBody(reply)}
	}
	return out, nil
}

func nxosBody(reply *connector.Object) interface{} {
	result, _ := reply.Get("result")
	obj, ok := connector.AsObject(result)
	if !ok {
		return result
	}
	if body, ok := obj.Get("body"); ok {
		return body
	}
	if msg, ok := obj.Get("msg"); ok {
		return msg
	}
	return obj
}

func nxosError(cmd string, raw interface{}) error {
	e, ok := connector.AsObject(raw)
	if !ok {
		return fmt.Errorf("nxapi: malformed error %v", raw)
	}
	codeRaw, _ := e.Get("code")
	msgRaw, _ := e.Get("message")
	code := cast.ToInt(codeRaw)
	msg := cast.ToString(msgRaw)
	if data, ok := e.Get("data"); ok {
		if d, ok := connector.AsObject(data); ok {
			if m, ok := d.Get("msg"); ok {
				msg = fmt.Sprintf("%s [%s]", msg, cast.ToString(m))
			}
		}
	}
	if code == nxosInvalidParams {
		code = connector.CodeInvalidCommand
	}
	return &connector.CommandError{Code: code, Command: cmd, Message: msg}
}
