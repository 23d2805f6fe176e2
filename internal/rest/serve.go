// Copyright (C) 2020 Markus L. Noga
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

// Package rest exposes background estimation over HTTP. Requests stream the
// operator log back as plain text.
package rest

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/mlnoga/labgenp/internal/ops"
	"github.com/mlnoga/labgenp/web"
)

// Creates the router. Operators run with a copy of the given context which
// only permits relative paths inside the working directory tree.
func NewRouter(c *ops.Context) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	r.GET("/", getIndex)
	api := r.Group("/api")
	{
		v1 := api.Group("/v1")
		{
			v1.GET("/ping", getPing)
			v1.POST("/background", postBackground(c))
			v1.POST("/run", postRun(c))
		}
	}
	return r
}

// Listens and serves on the given address, e.g. ":8080"
func Serve(addr string, c *ops.Context) error {
	return NewRouter(c).Run(addr)
}

func getIndex(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", web.IndexHTML)
}

func getPing(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "pong",
	})
}

func printArgs(logWriter io.Writer, prefix, suffix string, args interface{}) error {
	m, err := json.MarshalIndent(args, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintf(logWriter, "%s%s%s", prefix, string(m), suffix)
	return nil
}

type postBackgroundArgs struct {
	FilePatterns []string          `json:"filePatterns" binding:"required"`
	Background   *ops.OpBackground `json:"background"`
	Out          string            `json:"out"`
}

func postBackground(base *ops.Context) gin.HandlerFunc {
	return func(c *gin.Context) {
		var args postBackgroundArgs
		if err := c.ShouldBindJSON(&args); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if args.Background == nil {
			args.Background = ops.NewOpBackgroundDefault()
		}
		out := ops.OutputFileName(args.Out, args.Background.S, args.Background.N)
		seq := ops.NewOpSequence(ops.NewOpLoadMany(args.FilePatterns), args.Background, ops.NewOpSave(out))
		runStreaming(c, base, args, seq)
	}
}

func postRun(base *ops.Context) gin.HandlerFunc {
	return func(c *gin.Context) {
		seq := ops.NewOpSequenceDefault()
		if err := c.ShouldBindJSON(seq); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		runStreaming(c, base, seq, seq)
	}
}

// Header carrying the ID of a run, which also prefixes its log
const runIDHeader = "X-Run-ID"

// Runs the operator, streaming arguments and log to the response
func runStreaming(c *gin.Context, base *ops.Context, args interface{}, op ops.Operator) {
	runID := uuid.NewString()
	logWriter := c.Writer
	header := logWriter.Header()
	header.Set("Content-Type", "text/plain")
	header.Set(runIDHeader, runID)
	logWriter.WriteHeader(http.StatusOK)
	fmt.Fprintf(logWriter, "Run %s\n", runID)

	if err := printArgs(logWriter, "Arguments:\n", "\n", args); err != nil {
		fmt.Fprintf(logWriter, "Error printing arguments: %s\n", err.Error())
		return
	}

	ctx := *base
	ctx.Log = logWriter
	ctx.RestrictPaths = true
	if _, err := ops.Run(op, &ctx); err != nil {
		fmt.Fprintf(logWriter, "error: %s\n", err.Error())
	}
	logWriter.Flush()
}
