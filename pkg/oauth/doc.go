// Package oauth relays an OAuth-style authorization redirect into embedded
// web content.
//
// The flow has four steps:
//
//  1. Web content asks the plugin to start (the "startOAuth" command) with
//     the authorization endpoint URL. The plugin opens it in an external
//     browser tab and acknowledges at once.
//  2. The authorization server redirects to the app's callback URI
//     (host "oauth_callback" by default). The OS hands that URI back to the
//     app, and the plugin collects its fragment and query parameters.
//  3. The parameters are serialized to JSON and dispatched into the content
//     as a window "message" event whose data is "oauth::" followed by the
//     JSON. Delivery waits until the content has finished loading.
//  4. When the app regains the foreground, the caller is told the browser
//     surface has closed, whether or not a callback arrived.
//
// [Adapter] implements the flow with no platform dependency; [Plugin] binds
// it to the platform package's channels.
//
// Web content consumes the message like this:
//
//	window.addEventListener('message', (evt) => {
//	  if (typeof evt.data === 'string' && evt.data.startsWith('oauth::')) {
//	    const params = JSON.parse(evt.data.substring(7));
//	    // params.code, params.state, params.oauth_callback_url ...
//	  }
//	});
package oauth
