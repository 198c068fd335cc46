// Copyright (c) 2025 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package tcp

import "github.com/ffutop/modbus-tcp-client/modbus"

// Verify reports a device exception echo as *modbus.ExceptionError and
// passes every other response through.
//
// The transaction id of the response is not compared with the request.
func Verify(request, response []byte) error {
	if len(request) < MinSize || len(response) < MinSize {
		return nil
	}
	if request[7]+modbus.ExceptionFlag != response[7] {
		return nil
	}
	exc := &modbus.ExceptionError{FunctionCode: response[7]}
	if len(response) > MinSize {
		exc.Code = response[8]
	}
	return exc
}

// ExtractPayload strips the MBAP header, unit id, function code and byte
// count from a read response. Shorter responses are returned unchanged.
func ExtractPayload(response []byte) []byte {
	if len(response) < ReadPrefixSize {
		return response
	}
	payload := make([]byte, len(response)-ReadPrefixSize)
	copy(payload, response[ReadPrefixSize:])
	return payload
}
