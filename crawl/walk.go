package crawl

import (
	"context"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/fwojciec/webtools"
)

// Frontier sizing for link walking.
const (
	frontierExpectedURLs      = 10000
	frontierFalsePositiveRate = 0.01
)

// drainTimeout bounds how long the coordinator waits for in-flight pages
// after it stops dispatching.
const drainTimeout = 5 * time.Second

// walk follows same-host links from start until maxPages pages have been
// dispatched or the frontier is exhausted. Only links under the start
// path that pass the filter are followed; the start page is always audited.
func (a *Auditor) walk(ctx context.Context, start *url.URL, filter *webtools.URLFilter, maxPages int) ([]pageResult, error) {
	pathPrefix := start.Path

	frontier := NewFrontier(frontierExpectedURLs, frontierFalsePositiveRate)
	frontier.Push(webtools.Link{URL: start.String(), Priority: webtools.PriorityNavigation})

	concurrency := a.concurrency()
	workCh := make(chan webtools.Link, concurrency)
	resultCh := make(chan pageResult)

	var wg sync.WaitGroup
	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for link := range workCh {
				result := a.auditPage(ctx, link.URL, true)
				select {
				case resultCh <- result:
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	var results []pageResult
	handle := func(res pageResult) {
		results = append(results, res)
		for _, link := range res.discovered {
			if inScope(link, start.Host, pathPrefix, filter) {
				frontier.Push(link)
			}
		}
	}

	dispatched := 0
	pending := 0
	var next *webtools.Link
	if link, ok := frontier.Pop(); ok {
		next = &link
	}

coordinatorLoop:
	for {
		if next == nil && pending == 0 {
			break
		}
		if ctx.Err() != nil {
			break
		}

		if next != nil && dispatched < maxPages {
			select {
			case <-ctx.Done():
				break coordinatorLoop
			case workCh <- *next:
				dispatched++
				pending++
				next = nil
			case res := <-resultCh:
				pending--
				handle(res)
			}
		} else {
			select {
			case <-ctx.Done():
				break coordinatorLoop
			case res, ok := <-resultCh:
				if !ok {
					break coordinatorLoop
				}
				pending--
				handle(res)
			}
		}

		if next == nil && dispatched < maxPages {
			if link, ok := frontier.Pop(); ok {
				next = &link
			}
		}
	}

	close(workCh)

	timeout := time.NewTimer(drainTimeout)
	defer timeout.Stop()
drainLoop:
	for {
		select {
		case res, ok := <-resultCh:
			if !ok {
				break drainLoop
			}
			results = append(results, res)
		case <-timeout.C:
			break drainLoop
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

// inScope reports whether a discovered link should be walked.
func inScope(link webtools.Link, host, pathPrefix string, filter *webtools.URLFilter) bool {
	if link.NoFollow {
		return false
	}
	u, err := url.Parse(link.URL)
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	if u.Host != host {
		return false
	}
	if !strings.HasPrefix(u.Path, pathPrefix) {
		return false
	}
	return filter.Match(link.URL)
}
