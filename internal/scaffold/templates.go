package scaffold

import "text/template"

// Baseline pins for the generated manifest. The converter appends any
// further dependencies the scene imports.
const (
	remotionVersion = "4.0.221"
	reactVersion    = "18.3.1"
	typesReactVer   = "18.3.5"
	typescriptVer   = "5.5.4"
)

// Templates use << >> delimiters so JSX braces pass through untouched.
func mustTemplate(name, text string) *template.Template {
	return template.Must(template.New(name).Delims("<<", ">>").Parse(text))
}

var packageJSONTmpl = mustTemplate("package.json", `{
  "name": "<< .PackageName >>",
  "version": "1.0.0",
  "private": true,
  "scripts": {
    "dev": "remotion studio",
    "build": "remotion bundle",
    "render": "remotion render"
  },
  "dependencies": {
    "@remotion/cli": "<< .RemotionVersion >>",
    "react": "<< .ReactVersion >>",
    "react-dom": "<< .ReactVersion >>",
    "remotion": "<< .RemotionVersion >>"
  },
  "devDependencies": {
    "@types/react": "<< .TypesReactVersion >>",
    "typescript": "<< .TypescriptVersion >>"
  }
}
`)

var remotionConfigTmpl = mustTemplate("remotion.config.ts", `import { Config } from '@remotion/cli/config';

Config.setVideoImageFormat('jpeg');
Config.setOverwriteOutput(true);
`)

var indexTmpl = mustTemplate("src/index.ts", `import { registerRoot } from 'remotion';
import { Root } from './Root';

registerRoot(Root);
`)

var rootTmpl = mustTemplate("src/Root.tsx", `import React from 'react';
import { Composition } from 'remotion';
import Scene from './Scene';

export const Root: React.FC = () => {
  return (
    <Composition
      id="<< .SceneName >>"
      component={Scene}
      durationInFrames={<< .DurationInFrames >>}
      fps={<< .FPS >>}
      width={<< .Width >>}
      height={<< .Height >>}
    />
  );
};
`)

var starterSceneTmpl = mustTemplate("src/Scene.tsx", `import React from 'react';
import { useCurrentFrame, interpolate } from 'remotion';

const << .SceneName >>: React.FC = () => {
  const frame = useCurrentFrame();
  const opacity = interpolate(frame, [0, 30], [0, 1], {
    extrapolateRight: 'clamp',
  });
  return (
    <div
      style={{
        flex: 1,
        display: 'flex',
        alignItems: 'center',
        justifyContent: 'center',
        fontSize: 80,
        backgroundColor: 'white',
        opacity,
      }}
    >
      << .SceneName >>
    </div>
  );
};

export default << .SceneName >>;
`)
