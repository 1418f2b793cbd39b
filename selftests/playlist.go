package selftests

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"time"

	"github.com/launchdarkly/go-sdk-common/v3/ldvalue"

	"github.com/launchdarkly/bdd-harness/framework/bdd"
)

//go:embed testdata/playlist.json
var playlistDocument []byte

// loadDelay simulates the latency of fetching the document.
const loadDelay = 5 * time.Millisecond

type playlistFixture struct {
	document ldvalue.Value
}

func loadPlaylist(data []byte) (ldvalue.Value, error) {
	var doc ldvalue.Value
	if err := json.Unmarshal(data, &doc); err != nil {
		return ldvalue.Null(), fmt.Errorf("playlist document is not valid JSON: %w", err)
	}
	if doc.Type() != ldvalue.ObjectType {
		return ldvalue.Null(), fmt.Errorf("playlist document must be an object, not %s", doc.Type())
	}
	return doc, nil
}

func stringsOf(array ldvalue.Value) []string {
	ret := make([]string, 0, array.Count())
	for i := 0; i < array.Count(); i++ {
		ret = append(ret, array.GetByIndex(i).StringValue())
	}
	return ret
}

func registerPlaylist(reg *bdd.Registry) error {
	f := &playlistFixture{}
	playlist := func() ldvalue.Value { return f.document.GetByKey("playlist") }
	track := func() ldvalue.Value { return playlist().GetByKey("track").GetByIndex(0) }

	return reg.Describe(PlaylistSuite, "reading a playlist document", bdd.Examples{
		// Runs first and loads the document once for the following examples.
		bdd.It("setup once", func(e *bdd.Example) {
			pending := e.Suspend()
			go func() {
				time.Sleep(loadDelay)
				doc, err := loadPlaylist(playlistDocument)
				if err != nil {
					pending.Fail(err)
					return
				}
				f.document = doc
				pending.Done()
			}()
		}),
		bdd.It("should parse the document", func(e *bdd.Example) {
			e.Assert().Type("object", f.document.AsArbitraryValue())
			e.Assert().Type("object", playlist().AsArbitraryValue())
		}),
		bdd.It("should read the simple playlist elements", func(e *bdd.Example) {
			pl := playlist()
			e.Assert().Equals("My playlist", pl.GetByKey("title").StringValue())
			e.Assert().Equals("Jane Doe", pl.GetByKey("creator").StringValue())
			e.Assert().Equals("My favorite songs", pl.GetByKey("annotation").StringValue())
			e.Assert().Equals("http://example.com/myplaylists", pl.GetByKey("info").StringValue())
			e.Assert().Equals("http://example.com/myplaylists/myplaylist", pl.GetByKey("location").StringValue())
			e.Assert().Equals("magnet:?xt=urn:sha1:YNCKHTQCWBTRNJIV4WNAE52SJUQCZO5C", pl.GetByKey("identifier").StringValue())
			e.Assert().Equals("http://example.com/img/mypicture", pl.GetByKey("image").StringValue())
			e.Assert().Equals("2005-01-08T17:10:47-05:00", pl.GetByKey("date").StringValue())
			e.Assert().Equals("http://creativecommons.org/licenses/by/1.0/", pl.GetByKey("license").StringValue())
		}),
		bdd.It("should read the attributions", func(e *bdd.Example) {
			attribution := playlist().GetByKey("attribution")
			e.Assert().Type("array", attribution.AsArbitraryValue())
			e.Assert().Equals("http://bar.com/secondderived.xspf", attribution.GetByIndex(0).GetByKey("identifier").StringValue())
			e.Assert().Equals("http://foo.com/original.xspf", attribution.GetByIndex(1).GetByKey("location").StringValue())
			e.Assert().Equals(2, attribution.Count())
		}),
		bdd.It("should read the links and meta tags", func(e *bdd.Example) {
			pl := playlist()
			e.Assert().Type("array", pl.GetByKey("link").AsArbitraryValue())
			e.Assert().Equals("http://socialnetwork.example.org/foaf/mary.rdfs",
				pl.GetByKey("link").GetByIndex(0).GetByKey("http://foaf.example.org/namespace/version1").StringValue())
			e.Assert().Type("array", pl.GetByKey("meta").AsArbitraryValue())
			e.Assert().Equals("value", pl.GetByKey("meta").GetByIndex(0).GetByKey("http://example.org/key").StringValue())
		}),
		bdd.It("should read extensions", func(e *bdd.Example) {
			ext := playlist().GetByKey("extension")
			e.Assert().Type("object", ext.AsArbitraryValue())
			e.Assert().Type("array", ext.GetByKey("http://example.com").AsArbitraryValue())
			e.Assert().Type("object", ext.GetByKey("http://example.com").GetByIndex(0).AsArbitraryValue())
			e.Assert().Equals("value", ext.GetByKey("http://example.com").GetByIndex(0).GetByKey("key").StringValue())
		}),
		bdd.It("should read the tracks simple values", func(e *bdd.Example) {
			e.Assert().Type("array", playlist().GetByKey("track").AsArbitraryValue())
			t := track()
			e.Assert().Equals("My Way", t.GetByKey("title").StringValue())
			e.Assert().Equals("Frank Sinatra", t.GetByKey("creator").StringValue())
			e.Assert().Equals("This is my theme song.", t.GetByKey("annotation").StringValue())
			e.Assert().Equals("Frank Sinatra's Greatest Hits", t.GetByKey("album").StringValue())
			e.Assert().Equals(3, t.GetByKey("trackNum").IntValue())
			e.Assert().Equals(19200, t.GetByKey("duration").IntValue())
			e.Assert().StringEquals("19200", t.GetByKey("duration").AsArbitraryValue())
		}),
		bdd.It("should read the tracks locations and identifiers", func(e *bdd.Example) {
			t := track()
			e.Assert().EnumEquals([]string{
				"http://example.com/my.mp3",
				"http://example.com/my.ogg",
				"http://example.com/whitespace.ogg",
			}, stringsOf(t.GetByKey("location")))
			e.Assert().EnumEquals([]string{
				"magnet:?xt=urn:sha1:YNCKHTQCWBTRNJIV4WNAE52SJUQCZO5C",
				"http://franksinatra.com/myway.xml",
			}, stringsOf(t.GetByKey("identifier")))
			e.Assert().IsFalse(t.GetByKey("link").IsDefined())
		}),
	})
}
