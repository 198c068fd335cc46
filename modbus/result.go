// Copyright (c) 2025 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package modbus

import "errors"

// Result is the uniform outcome of a client operation, suited for
// reporting. ErrorCode is the device exception code, or 0.
type Result[T any] struct {
	Success   bool   `json:"success" yaml:"success"`
	Content   T      `json:"content,omitempty" yaml:"content,omitempty"`
	ErrorCode int    `json:"errorCode" yaml:"errorCode"`
	Message   string `json:"message" yaml:"message"`
}

// NewResult folds a (value, error) pair into a Result.
func NewResult[T any](content T, err error) Result[T] {
	if err == nil {
		return Result[T]{Success: true, Content: content, Message: "Success"}
	}

	r := Result[T]{Message: err.Error()}
	var exc *ExceptionError
	if errors.As(err, &exc) {
		r.ErrorCode = int(exc.Code)
		r.Message = exc.Message()
	}
	return r
}
