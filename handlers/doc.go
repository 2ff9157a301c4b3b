// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the survey API.

Handlers decode the request, call one of the survey engines and encode the
result. They hold no business rules; errors from the engines carry a kind
that middleware.FaultResponse turns into a status code.

  - SurveyHandler: create, list, fetch, update and close surveys
  - VotingHandler: ballot submission
  - ResultsHandler: results, voter listing and the PDF report
  - HealthHandler: database liveness

Path ids must be positive integers. Request ids inside JSON bodies may be
numbers or numeric strings, and dates accept RFC 3339 as well as
"2006-01-02 15:04:05", "2006-01-02T15:04" and "2006-01-02".
*/
package handlers
