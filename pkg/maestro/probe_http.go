/*
 * Copyright (c) 2019 OysterPack, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package maestro

import (
	"context"
	"net"
	"net/http"
	"time"
)

const httpProbeConnectTimeout = 1 * time.Second

// httpProbeClient dials with a 1-second connect timeout, per spec §4.B, and
// is reused across probe invocations.
var httpProbeClient = &http.Client{
	Transport: &http.Transport{
		DialContext: (&net.Dialer{Timeout: httpProbeConnectTimeout}).DialContext,
	},
}

// HttpProbe issues an HTTP request at most once per Period and is ready iff
// the response status is in [200, 299]. Response bodies are discarded.
// Grounded on original_source/src/readiness_probe/http.rs.
type HttpProbe struct {
	URL    string
	Method string
	Period time.Duration
}

func (p HttpProbe) Ready(ctx *ProbeContext) bool {
	if !ctx.periodElapsed(p.Period) {
		return *ctx.LastResult
	}

	now := ctx.Now
	*ctx.ReadyCheckedAt = now

	ok := runHTTPProbe(p.Method, p.URL)
	*ctx.LastResult = ok

	took := time.Since(now)
	if ctx.Logger != nil {
		ev := ctx.Logger.Debug()
		if !ok {
			ev = ctx.Logger.Warn()
		}
		ev.Str("url", p.URL).Str("method", p.Method).Dur("probe_took_ms", took).Bool("ok", ok).Msg("http readiness probe")
	}

	return ok
}

func runHTTPProbe(method, url string) bool {
	if url == "" {
		return false
	}
	reqCtx, cancel := context.WithTimeout(context.Background(), httpProbeConnectTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, method, url, nil)
	if err != nil {
		return false
	}

	resp, err := httpProbeClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode >= 200 && resp.StatusCode <= 299
}
