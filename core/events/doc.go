// Package events defines the typed realtime voice channel contract.
//
// Inbound events are parsed from provider JSON by Parse into a closed set of
// variants; anything unrecognised becomes Unknown. Kinds are the provider's
// wire type names. Where the provider has renamed an event, both names are
// accepted and mapped to the same variant.
//
// session events
//
//   - SessionCreated (session.created), SessionUpdated (session.updated).
//   - UpdateSession (session.update, outbound): session configuration.
//
// response events
//
//   - ResponseCreated (response.created): a response started on the provider.
//   - ResponseTextDelta / ResponseTextDone (response.text.*): streamed text.
//   - ResponseAudioTranscriptDelta / ResponseAudioTranscriptDone
//     (response.audio_transcript.*): transcript of spoken output.
//   - ResponseAudioDelta (response.audio.delta): PCM16 output audio frame.
//   - ResponseDone (response.done): terminal event for a response.
//   - CreateResponse (response.create, outbound) and CancelResponse
//     (response.cancel, outbound).
//
// input events
//
//   - InputTranscriptionDelta / InputTranscriptionCompleted /
//     InputTranscriptionFailed (conversation.item.input_audio_transcription.*).
//   - SpeechStarted / SpeechStopped (input_audio_buffer.speech_*).
//   - InputBufferCommitted / InputBufferCleared (input_audio_buffer.*).
//   - AppendInputAudio, CommitInputBuffer, ClearInputBuffer (outbound).
//
// output buffer events
//
//   - OutputBufferStarted / OutputBufferCleared (output_audio_buffer.*).
//   - ClearOutputBuffer (output_audio_buffer.clear, outbound).
//
// tool events
//
//   - ToolArgumentsDelta / ToolArgumentsDone
//     (response.function_call_arguments.*).
//   - ToolOutput (conversation.item.create, outbound): function call output.
//   - CreateUserMessage (conversation.item.create, outbound): typed user text.
//
// Error (error) reports a provider side failure; it is never fatal.
package events
