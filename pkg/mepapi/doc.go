// Package mepapi scrapes Member-of-European-Parliament data from the
// official EU Parliament website.
//
// It implements the fetch.Source and fetch.RecordHandle abstractions:
// identifiers are enumerated from the full-list XML directory, and per-MEP
// data is extracted from the HTML profile pages with goquery. All HTTP goes
// through pkg/client, which handles politeness spacing, response caching,
// and retries.
//
// # Basic Usage
//
//	httpClient, err := client.New(client.DefaultConfig(redisClient, userAgent))
//	if err != nil {
//		return err
//	}
//	source := mepapi.New(httpClient)
//
//	urls, err := source.EnumerateIdentifiers(ctx)
//	if err != nil {
//		return err
//	}
//
//	handle, err := source.OpenRecord(ctx, urls[0])
//	if err != nil {
//		return err
//	}
//	personal, err := handle.PersonalData(ctx)
//
// The website's schema is not controlled by this package: personal data is
// returned as an open key-value map, and absent fields are simply omitted.
package mepapi
