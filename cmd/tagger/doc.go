// Command tagger is the headless front end of the tagging engine:
// cluster local files, look clusters up against the catalog, load
// releases, match files onto tracks, and save tags.
package main
