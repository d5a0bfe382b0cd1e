// Package model defines the core data structures shared by the
// download-and-merge pipeline.
//
// # Content Descriptor
//
// A ContentDescriptor identifies one downloadable item. It is produced by
// a resolver and is immutable once obtained:
//
//	desc := model.ContentDescriptor{
//	    Title: "My Video",
//	    Streams: []model.StreamRef{
//	        {Kind: model.KindVideo, URL: videoURL, Quality: 80},
//	        {Kind: model.KindAudio, URL: audioURL, Quality: 30280},
//	    },
//	}
//
// # Layout
//
// Layout computes deterministic on-disk names for intermediate stream
// files and the final merged output:
//
//	layout := model.Layout{Dir: "/downloads", Container: "mp4"}
//	layout.IntermediatePath("My Video", stream) // /downloads/My Video.video.80
//	layout.OutputPath("My Video")               // /downloads/My Video.mp4
//
// # Jobs
//
// TransferSpec describes one stream transfer inside a session, and MergeJob
// describes the ordered inputs handed to the merge step.
package model
